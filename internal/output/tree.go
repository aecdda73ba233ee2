package output

import (
	"fmt"
	"path"

	"github.com/disiqueira/gotree/v3"
)

// ChainTree renders visited pages grouped by the directory they were read
// in, each labelled with its position in the walk.
type ChainTree struct {
	tree gotree.Tree
	dirs map[string]gotree.Tree
}

func NewChainTree(rootLabel string) ChainTree {
	return ChainTree{tree: gotree.New(rootLabel), dirs: make(map[string]gotree.Tree)}
}

func (t ChainTree) getDir(dirPath string) gotree.Tree {
	if dirPath == "." || dirPath == "" {
		return t.tree
	}
	dir := t.dirs[dirPath]
	if dir == nil {
		parent := t.getDir(path.Dir(dirPath))
		dir = parent.Add(path.Base(dirPath) + "/")
		t.dirs[dirPath] = dir
	}
	return dir
}

// Insert adds the page at pagePath (relative to the tree root) as the
// seq-th page of the walk. The title is appended when non-empty.
func (t ChainTree) Insert(pagePath string, seq int, title string) {
	label := fmt.Sprintf("%03d %s", seq, path.Base(pagePath))
	if title != "" {
		label += " (" + title + ")"
	}
	t.getDir(path.Dir(pagePath)).Add(label)
}

func (t ChainTree) Render() string {
	return t.tree.Print()
}
