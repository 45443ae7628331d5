package doctree

import "strconv"

// DocTree is a nested view of a Result.
type DocTree struct {
	Title    string     `json:"title"`
	Children []*DocNode `json:"children"`
}

// DocNode is a heading with the headings nested under it.
type DocNode struct {
	Level    Level      `json:"level"`
	Title    string     `json:"text"`
	Page     int        `json:"page"`
	Children []*DocNode `json:"children,omitempty"`
}

// Depth returns the numeric depth of a level ("H3" -> 3), or 0 if it is not a heading tag.
func (l Level) Depth() int {
	if len(l) < 2 || l[0] != 'H' {
		return 0
	}
	n, err := strconv.Atoi(string(l[1:]))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// LevelFor returns the tag for a 1-based depth.
func LevelFor(depth int) Level {
	return Level("H" + strconv.Itoa(depth))
}

// Tree nests the flat outline by level. A heading becomes a child of the closest
// preceding heading with a smaller depth.
func (r Result) Tree() *DocTree {
	tree := &DocTree{Title: r.Title, Children: []*DocNode{}}

	type stackEntry struct {
		node  *DocNode
		depth int
	}
	root := &DocNode{}
	stack := []stackEntry{{node: root, depth: 0}}

	for _, e := range r.Outline {
		depth := e.Level.Depth()
		node := &DocNode{Level: e.Level, Title: e.Text, Page: e.Page}

		for len(stack) > 1 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{node: node, depth: depth})
	}

	if root.Children != nil {
		tree.Children = root.Children
	}
	return tree
}
