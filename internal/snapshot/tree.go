package snapshot

import (
	"strings"

	gotree "github.com/disiqueira/gotree/v3"
)

// RenderTree draws the directory overview for the included paths,
// rooted at rootName. Paths keep their discovery order; directories
// appear where their first file introduces them.
func RenderTree(rootName string, paths []string) string {
	root := gotree.New(rootName)
	dirs := map[string]gotree.Tree{"": root}

	for _, p := range paths {
		parts := strings.Split(p, "/")
		parent := root
		prefix := ""
		for _, seg := range parts[:len(parts)-1] {
			if prefix == "" {
				prefix = seg
			} else {
				prefix = prefix + "/" + seg
			}
			node, ok := dirs[prefix]
			if !ok {
				node = parent.Add(seg)
				dirs[prefix] = node
			}
			parent = node
		}
		parent.Add(parts[len(parts)-1])
	}
	return root.Print()
}
