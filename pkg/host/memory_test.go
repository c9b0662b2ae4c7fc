package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHostBuildsTree(t *testing.T) {
	h := NewMemoryHost()
	root := h.NewContainer()

	div := h.CreateNode("div")
	h.SetProperty(div, "id", "app")
	text := h.CreateNode(TextNode)
	h.SetProperty(text, "nodeValue", "hello & bye")
	h.AppendChild(div, text)
	h.AppendChild(root, div)

	assert.Equal(t, `<div id="app">hello &amp; bye</div>`, root.String())
	assert.Equal(t, "hello & bye", root.Text())
	assert.Equal(t, 3, root.Count())
	assert.Same(t, div, text.(*MemoryNode).Parent)
}

func TestMemoryHostRemoveProperty(t *testing.T) {
	h := NewMemoryHost()
	n := h.CreateNode("input")
	h.SetProperty(n, "value", "x")
	h.SetProperty(n, "disabled", true)
	h.RemoveProperty(n, "value")
	h.RemoveProperty(n, "missing")

	assert.Equal(t, []string{"disabled"}, n.(*MemoryNode).PropNames())
}

func TestMemoryHostAppendMoves(t *testing.T) {
	h := NewMemoryHost()
	a := h.CreateNode("a")
	b := h.CreateNode("b")
	c := h.CreateNode("c")
	h.AppendChild(a, c)
	h.AppendChild(b, c)

	assert.Empty(t, a.(*MemoryNode).Children)
	require.Len(t, b.(*MemoryNode).Children, 1)
	assert.Same(t, b, c.(*MemoryNode).Parent)
}

func TestMemoryHostRemoveChild(t *testing.T) {
	h := NewMemoryHost()
	parent := h.CreateNode("ul")
	first := h.CreateNode("li")
	second := h.CreateNode("li")
	h.AppendChild(parent, first)
	h.AppendChild(parent, second)

	h.RemoveChild(parent, first)

	p := parent.(*MemoryNode)
	require.Len(t, p.Children, 1)
	assert.Same(t, second, p.Children[0])
	assert.Nil(t, first.(*MemoryNode).Parent)

	assert.Panics(t, func() { h.RemoveChild(parent, first) })
}

func TestMemoryHostRejectsForeignNodes(t *testing.T) {
	h := NewMemoryHost()
	assert.Panics(t, func() { h.SetProperty("not a node", "x", 1) })
	assert.Panics(t, func() { h.AppendChild(h.CreateNode("div"), nil) })
}

func TestMemoryHostListeners(t *testing.T) {
	h := NewMemoryHost()
	n := h.CreateNode("button")
	clicks := 0
	handler := func() { clicks++ }

	h.AddEventListener(n, "click", handler)
	h.AddEventListener(n, "click", handler) // duplicate ignored

	mn := n.(*MemoryNode)
	assert.Equal(t, 1, mn.Dispatch("click", nil))
	assert.Equal(t, 1, clicks)
	assert.Equal(t, []string{"click"}, mn.Events())

	h.RemoveEventListener(n, "click", func() {}) // not attached
	assert.Len(t, mn.Listeners("click"), 1)

	h.RemoveEventListener(n, "click", handler)
	assert.Equal(t, 0, mn.Dispatch("click", nil))
	assert.Empty(t, mn.Events())
}

func TestDispatchPassesEvent(t *testing.T) {
	h := NewMemoryHost()
	n := h.CreateNode("input")
	var got Event
	var raw any
	h.AddEventListener(n, "input", func(e Event) { got = e })
	h.AddEventListener(n, "input", func(v any) { raw = v })
	h.AddEventListener(n, "input", 42) // not callable

	ran := n.(*MemoryNode).Dispatch("input", "abc")

	assert.Equal(t, 2, ran)
	assert.Equal(t, "input", got.Type)
	assert.Equal(t, "abc", got.Value)
	assert.Same(t, n, got.Target)
	assert.Equal(t, "abc", raw)
}

func TestFind(t *testing.T) {
	h := NewMemoryHost()
	root := h.NewContainer()
	div := h.CreateNode("div")
	b1 := h.CreateNode("button")
	b2 := h.CreateNode("button")
	h.AppendChild(root, div)
	h.AppendChild(div, b1)
	h.AppendChild(div, b2)

	assert.Same(t, b1, root.FindByType("button"))
	assert.Nil(t, root.FindByType("span"))
	assert.Len(t, root.FindAll(func(m *MemoryNode) bool { return m.Type == "button" }), 2)
}
