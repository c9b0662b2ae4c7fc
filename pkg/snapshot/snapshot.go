package snapshot

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/host"
)

// Snapshot is a committed tree at one point in time.
type Snapshot struct {
	ID      string     `json:"id"`
	Root    string     `json:"root"`
	TakenAt time.Time  `json:"takenAt"`
	Tree    *Node      `json:"tree"`
	Fibers  *FiberNode `json:"fibers,omitempty"`
}

// Node is one host node.
type Node struct {
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Events   []string       `json:"events,omitempty"`
	Children []*Node        `json:"children,omitempty"`
}

// FiberNode is one fiber of the committed tree.
type FiberNode struct {
	Name     string       `json:"name"`
	States   int          `json:"states,omitempty"`
	Effects  int          `json:"effects,omitempty"`
	Children []*FiberNode `json:"children,omitempty"`
}

// Take captures container's subtree. If e is non-nil its committed fiber
// tree is captured too. Take must run on the engine's goroutine.
func Take(root string, container *host.MemoryNode, e *fiber.Engine) *Snapshot {
	s := &Snapshot{
		ID:      uuid.NewString(),
		Root:    root,
		TakenAt: time.Now().UTC(),
		Tree:    FromMemory(container),
	}
	if e != nil {
		s.Fibers = FromEngine(e)
	}
	return s
}

// FromMemory converts a memory host node and its descendants.
func FromMemory(n *host.MemoryNode) *Node {
	if n == nil {
		return nil
	}
	out := &Node{Type: n.Type, Events: n.Events()}
	if len(n.Props) > 0 {
		out.Props = make(map[string]any, len(n.Props))
		for k, v := range n.Props {
			out.Props[k] = v
		}
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, FromMemory(c))
	}
	return out
}

// FromEngine converts the engine's committed fiber tree. It returns nil
// before the first commit.
func FromEngine(e *fiber.Engine) *FiberNode {
	var root *FiberNode
	var stack []*FiberNode
	e.Walk(func(f *fiber.Fiber, depth int) bool {
		states, effects := f.HookCount()
		n := &FiberNode{Name: f.Name(), States: states, Effects: effects}
		stack = stack[:depth]
		if depth == 0 {
			root = n
		} else {
			parent := stack[depth-1]
			parent.Children = append(parent.Children, n)
		}
		stack = append(stack, n)
		return true
	})
	return root
}

// Markup renders the host tree the way host.MemoryNode.String does, so a
// stored snapshot can be compared with a live container.
func (s *Snapshot) Markup() string {
	if s.Tree == nil {
		return ""
	}
	var sb strings.Builder
	for _, c := range s.Tree.Children {
		c.writeMarkup(&sb)
	}
	return sb.String()
}

func (n *Node) writeMarkup(sb *strings.Builder) {
	if n.Type == host.TextNode {
		if v, ok := n.Props[element.NodeValueKey]; ok && v != nil {
			sb.WriteString(html.EscapeString(fmt.Sprint(v)))
		}
		return
	}
	sb.WriteString("<" + n.Type)
	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, ` %s="%s"`, k, html.EscapeString(fmt.Sprint(n.Props[k])))
	}
	sb.WriteString(">")
	for _, c := range n.Children {
		c.writeMarkup(sb)
	}
	sb.WriteString("</" + n.Type + ">")
}

// Count returns the number of host nodes in the snapshot, container
// excluded.
func (s *Snapshot) Count() int {
	var count func(n *Node) int
	count = func(n *Node) int {
		c := 1
		for _, ch := range n.Children {
			c += count(ch)
		}
		return c
	}
	if s.Tree == nil {
		return 0
	}
	return count(s.Tree) - 1
}
