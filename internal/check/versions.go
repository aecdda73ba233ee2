package check

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// VersionSources names the files whose versions must agree, relative to the
// repository root.
type VersionSources struct {
	Properties string   // key = value file with major, minor and release keys
	Install4j  string   // installer project carrying <application version="...">
	Docs       []string // documents announcing "Version X"
	Product    string   // product name preceding " Version X" mid-line
}

// VersionReport is the outcome of ValidateVersions.
type VersionReport struct {
	Version  string    `json:"version"`
	Problems []Problem `json:"problems"`
}

var (
	leadingVersion = regexp.MustCompile(`^Version ([^ "<]+)[< "]`)
	inlineVersion  = regexp.MustCompile(` Version ([^ "<]+)[< "]`)
)

// ValidateVersions derives the release version from the properties file and
// reports every source that disagrees with it. An unreadable source counts
// as a disagreement; only a missing properties file is an error.
func ValidateVersions(fsys fs.FS, src VersionSources) (*VersionReport, error) {
	version, err := ReleaseVersion(fsys, src.Properties)
	if err != nil {
		return nil, err
	}
	report := &VersionReport{Version: version}
	mismatch := func(file string) {
		report.Problems = append(report.Problems, Problem{
			File:    file,
			Message: fmt.Sprintf("inconsistent versions between %s and %s", src.Properties, file),
		})
	}

	if version == "" {
		report.Problems = append(report.Problems, Problem{File: src.Properties, Message: "no version found"})
	}

	if src.Install4j != "" {
		if v, err := install4jVersion(fsys, src.Install4j); err != nil || v != version {
			mismatch(src.Install4j)
		}
	}

	for _, file := range src.Docs {
		data, err := fs.ReadFile(fsys, file)
		if err != nil || DocVersion(data, src.Product) != version {
			mismatch(file)
		}
	}
	return report, nil
}

// ReleaseVersion reads a properties file, joins major and minor with a dot
// and appends release: major=1, minor=9, release=beta1 gives "1.9beta1".
// Keys may carry a dotted prefix such as "mcv.version.major".
func ReleaseVersion(fsys fs.FS, file string) (string, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	var major, minor, release string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		switch {
		case strings.HasSuffix(key, "major"):
			major = val
		case strings.HasSuffix(key, "minor"):
			minor = val
		case strings.HasSuffix(key, "release"):
			release = val
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	if major == "" && minor == "" {
		return release, nil
	}
	return major + "." + minor + release, nil
}

func install4jVersion(fsys fs.FS, file string) (string, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()
	d, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", file, err)
	}
	return d.Find("application[version]").First().AttrOr("version", ""), nil
}

// DocVersion returns the version announced by the first line that starts
// with "Version " or mentions "<product> ... Version ". It returns "" when no
// line does.
func DocVersion(data []byte, product string) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text()) + " "
		if m := leadingVersion.FindStringSubmatch(line); m != nil {
			return m[1]
		}
		if product == "" {
			continue
		}
		i := strings.Index(line, product)
		if i < 0 {
			continue
		}
		if m := inlineVersion.FindStringSubmatch(line[i:]); m != nil {
			return m[1]
		}
	}
	return ""
}
