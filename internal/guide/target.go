package guide

import (
	"path"
	"strings"
)

// TargetPrefix starts every generated anchor name.
const TargetPrefix = "TARGET_"

// fileFragment stands in for an empty fragment, naming the top of a page.
const fileFragment = "FILE"

// MakeTarget derives the anchor name used in the combined document for a
// page and an optional fragment within it. Directory index pages are named
// after their directory so that "a/b/index.html" and "a/b.html" collide on
// purpose; everything else is reduced to its base name.
func MakeTarget(file, fragment string) string {
	if fragment == "" {
		fragment = fileFragment
	}
	f := strings.ReplaceAll(file, `\`, "/")
	if base := path.Base(f); base == "index.html" || base == "index.htm" {
		if parent := path.Base(path.Dir(f)); parent != "." && parent != "/" && parent != ".." {
			f = parent + ".html"
		}
	}
	f = path.Base(f)
	f = strings.TrimPrefix(f, "./")
	f = strings.ReplaceAll(f, "/", "_")
	if strings.HasSuffix(f, ".html") {
		f = strings.TrimSuffix(f, ".html") + "_"
	}
	return TargetPrefix + f + "_" + fragment
}

// isRetargeted reports whether a fragment was already produced by MakeTarget.
func isRetargeted(fragment string) bool {
	return strings.HasPrefix(fragment, TargetPrefix)
}

// isExternal reports whether a link destination carries a URL scheme such
// as http:, mailto: or javascript:, or is protocol-relative.
func isExternal(dest string) bool {
	if strings.HasPrefix(dest, "//") {
		return true
	}
	for i := 0; i < len(dest); i++ {
		c := dest[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		case i > 0 && c == ':':
			return true
		default:
			return false
		}
	}
	return false
}

// splitLink separates a destination into file and fragment at the first '#'.
// A query string on the file part is dropped.
func splitLink(dest string) (file, fragment string) {
	file, fragment, _ = strings.Cut(dest, "#")
	file, _, _ = strings.Cut(file, "?")
	return file, fragment
}
