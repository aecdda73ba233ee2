package vcssync

import (
	"path"
	"strings"
)

// Changes groups working-tree paths by the git command that stages them.
type Changes struct {
	Untracked []string `json:"untracked"`
	Modified  []string `json:"modified"`
	Deleted   []string `json:"deleted"`
}

// Empty reports whether there is nothing to stage.
func (c Changes) Empty() bool {
	return len(c.Untracked) == 0 && len(c.Modified) == 0 && len(c.Deleted) == 0
}

// ParseStatus reads `git status --porcelain` output and keeps the unstaged
// entries under docDir. Porcelain paths are relative to the repository root,
// as is docDir. Entries that are already staged are left alone.
func ParseStatus(porcelain, docDir string) Changes {
	docDir = path.Clean(docDir)
	var c Changes
	for _, line := range strings.Split(porcelain, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 4 {
			continue
		}
		// The two status columns are significant, including blanks.
		status := line[:2]
		p := unquote(line[3:])
		if !within(p, docDir) {
			continue
		}
		switch status {
		case "??":
			c.Untracked = append(c.Untracked, p)
		case " M", "AM":
			c.Modified = append(c.Modified, p)
		case " D":
			c.Deleted = append(c.Deleted, p)
		}
	}
	return c
}

func unquote(p string) string {
	p = strings.TrimPrefix(p, `"`)
	p = strings.TrimSuffix(p, `"`)
	return p
}

func within(p, dir string) bool {
	if dir == "." || dir == "" {
		return true
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}
