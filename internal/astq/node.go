// # internal/astq/node.go
package astq

import (
	"fmt"

	cerrors "retrofit/internal/core/errors"
	"retrofit/internal/project"
)

// SourceLocation addresses a node's origin in the project.
type SourceLocation struct {
	Path   string
	Line   int
	Column int
	Start  int
	End    int
}

// Node is a located syntax-tree node with TypeScript-compiler-style names.
// Its value snapshot reflects the file content at parse time; SetValue queues
// a replacement of the node's source range on the owning project, visible
// after the next Flush. A Flush invalidates every outstanding node.
type Node struct {
	name     string
	value    string
	start    int
	end      int
	line     int
	column   int
	parent   *Node
	children []*Node

	path string
	prj  *project.Project
	gen  uint64
}

func (n *Node) Name() string { return n.name }

func (n *Node) Value() string { return n.value }

func (n *Node) Children() []*Node { return n.children }

func (n *Node) Parent() *Node { return n.parent }

func (n *Node) Location() SourceLocation {
	return SourceLocation{
		Path:   n.path,
		Line:   n.line,
		Column: n.column,
		Start:  n.start,
		End:    n.end,
	}
}

// SetValue replaces the node's source range verbatim on the next Flush.
func (n *Node) SetValue(text string) error {
	if n.gen != n.prj.Generation() {
		return cerrors.New(cerrors.CodeValidationError,
			fmt.Sprintf("stale node %s in %s: project flushed since query", n.name, n.path))
	}
	return n.prj.QueueEdit(n.path, n.start, n.end, text)
}

// Evaluate runs a relative path expression against this node.
func (n *Node) Evaluate(expr string) ([]*Node, error) {
	pe, err := ParsePathExpr(expr)
	if err != nil {
		return nil, err
	}
	return pe.SelectFrom(n), nil
}

// FirstChild returns the first direct child with the given name.
func (n *Node) FirstChild(name string) (*Node, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// HasChild reports whether a direct child with the given name exists.
func (n *Node) HasChild(name string) bool {
	_, ok := n.FirstChild(name)
	return ok
}

// matchValue compares the node's text against a predicate value. String
// literals compare their unquoted content so import specifiers match without
// quote style mattering.
func (n *Node) matchValue(want string) bool {
	if n.name == "StringLiteral" {
		return unquote(n.value) == want
	}
	return n.value == want
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '\'', '"', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}
