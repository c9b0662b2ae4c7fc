package host

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/vango-dev/mini/pkg/element"
)

// MemoryNode is a node in a MemoryHost tree.
type MemoryNode struct {
	ID       uint32
	Type     string
	Props    map[string]any
	Children []*MemoryNode
	Parent   *MemoryNode

	listeners map[string][]any
	order     []string // event names in first-attach order
}

// MemoryHost is a Host that builds a plain in-memory tree.
type MemoryHost struct {
	nextID atomic.Uint32
}

// NewMemoryHost creates an empty MemoryHost.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{}
}

// NewContainer creates a detached root node to render into.
func (h *MemoryHost) NewContainer() *MemoryNode {
	return h.newNode("root")
}

func (h *MemoryHost) newNode(typ string) *MemoryNode {
	return &MemoryNode{
		ID:    h.nextID.Add(1),
		Type:  typ,
		Props: make(map[string]any),
	}
}

// CreateNode implements Host.
func (h *MemoryHost) CreateNode(typ string) Node {
	return h.newNode(typ)
}

// SetProperty implements Host.
func (h *MemoryHost) SetProperty(n Node, name string, value any) {
	mustNode(n).Props[name] = value
}

// RemoveProperty implements Host.
func (h *MemoryHost) RemoveProperty(n Node, name string) {
	delete(mustNode(n).Props, name)
}

// AddEventListener implements Host. Adding the same handler twice for the
// same event is a no-op.
func (h *MemoryHost) AddEventListener(n Node, event string, handler any) {
	mn := mustNode(n)
	for _, existing := range mn.listeners[event] {
		if element.Identical(existing, handler) {
			return
		}
	}
	if mn.listeners == nil {
		mn.listeners = make(map[string][]any)
	}
	if _, ok := mn.listeners[event]; !ok {
		mn.order = append(mn.order, event)
	}
	mn.listeners[event] = append(mn.listeners[event], handler)
}

// RemoveEventListener implements Host. Removing a handler that is not
// attached is a no-op.
func (h *MemoryHost) RemoveEventListener(n Node, event string, handler any) {
	mn := mustNode(n)
	list := mn.listeners[event]
	for i, existing := range list {
		if element.Identical(existing, handler) {
			mn.listeners[event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// AppendChild implements Host. A child that already has a parent is moved.
func (h *MemoryHost) AppendChild(parent, child Node) {
	p, c := mustNode(parent), mustNode(child)
	if c.Parent != nil {
		c.Parent.detach(c)
	}
	c.Parent = p
	p.Children = append(p.Children, c)
}

// RemoveChild implements Host. It panics if child is not a child of parent.
func (h *MemoryHost) RemoveChild(parent, child Node) {
	p, c := mustNode(parent), mustNode(child)
	if !p.detach(c) {
		panic(fmt.Sprintf("host: node %d is not a child of node %d", c.ID, p.ID))
	}
	c.Parent = nil
}

func mustNode(n Node) *MemoryNode {
	mn, ok := n.(*MemoryNode)
	if !ok || mn == nil {
		panic(fmt.Sprintf("host: expected *MemoryNode, got %T", n))
	}
	return mn
}

func (n *MemoryNode) detach(c *MemoryNode) bool {
	for i, existing := range n.Children {
		if existing == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

// Listeners returns the handlers attached for event.
func (n *MemoryNode) Listeners(event string) []any {
	return n.listeners[event]
}

// Events returns the names of events with at least one handler.
func (n *MemoryNode) Events() []string {
	var out []string
	for _, name := range n.order {
		if len(n.listeners[name]) > 0 {
			out = append(out, name)
		}
	}
	return out
}

// Dispatch invokes every handler attached for event, in attach order, and
// returns how many ran. The handler list is copied first so handlers may
// add or remove listeners.
func (n *MemoryNode) Dispatch(event string, value any) int {
	list := append([]any(nil), n.listeners[event]...)
	ran := 0
	for _, handler := range list {
		if Invoke(handler, Event{Type: event, Target: n, Value: value}) {
			ran++
		}
	}
	return ran
}

// Text returns the concatenated text content of the subtree.
func (n *MemoryNode) Text() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *MemoryNode) writeText(sb *strings.Builder) {
	if n.Type == TextNode {
		if v, ok := n.Props[element.NodeValueKey]; ok && v != nil {
			fmt.Fprint(sb, v)
		}
		return
	}
	for _, c := range n.Children {
		c.writeText(sb)
	}
}

// Find returns the first node in document order, n included, for which
// match returns true.
func (n *MemoryNode) Find(match func(*MemoryNode) bool) *MemoryNode {
	if match(n) {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// FindByType returns the first node with the given tag.
func (n *MemoryNode) FindByType(typ string) *MemoryNode {
	return n.Find(func(m *MemoryNode) bool { return m.Type == typ })
}

// FindAll returns every node in document order for which match is true.
func (n *MemoryNode) FindAll(match func(*MemoryNode) bool) []*MemoryNode {
	var out []*MemoryNode
	var walk func(*MemoryNode)
	walk = func(m *MemoryNode) {
		if match(m) {
			out = append(out, m)
		}
		for _, c := range m.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Count returns the number of nodes in the subtree, n included.
func (n *MemoryNode) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// String renders the subtree as markup. Properties are sorted by name;
// event listeners are not shown. The container itself is omitted.
func (n *MemoryNode) String() string {
	var sb strings.Builder
	if n.Type == "root" && n.Parent == nil {
		for _, c := range n.Children {
			c.writeMarkup(&sb)
		}
		return sb.String()
	}
	n.writeMarkup(&sb)
	return sb.String()
}

func (n *MemoryNode) writeMarkup(sb *strings.Builder) {
	if n.Type == TextNode {
		sb.WriteString(html.EscapeString(n.Text()))
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.Type)
	for _, name := range n.PropNames() {
		fmt.Fprintf(sb, ` %s="%s"`, name, html.EscapeString(fmt.Sprint(n.Props[name])))
	}
	sb.WriteByte('>')
	for _, c := range n.Children {
		c.writeMarkup(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.Type)
	sb.WriteByte('>')
}

// PropNames returns the node's property names in sorted order.
func (n *MemoryNode) PropNames() []string {
	names := make([]string, 0, len(n.Props))
	for name := range n.Props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
