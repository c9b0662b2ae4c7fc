package server

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/host"
	"github.com/vango-dev/mini/pkg/protocol"
)

func TestRemoteHostRecordsMutations(t *testing.T) {
	h := NewRemoteHost()
	div := h.CreateNode("div")
	text := h.CreateNode(host.TextNode)
	h.SetProperty(div, "class", "box")
	h.SetProperty(text, "nodeValue", 3)
	h.AppendChild(div, text)
	h.AppendChild(h.Container(), div)
	h.RemoveProperty(div, "class")

	want := []protocol.Mutation{
		{Op: host.OpCreate, Node: 2, Type: "div"},
		{Op: host.OpCreate, Node: 3, Type: "#text"},
		{Op: host.OpSetProp, Node: 2, Name: "class", Value: "box"},
		{Op: host.OpSetProp, Node: 3, Name: "nodeValue", Value: 3},
		{Op: host.OpAppend, Node: 3, Parent: 2},
		{Op: host.OpAppend, Node: 2, Parent: 1},
		{Op: host.OpRemoveProp, Node: 2, Name: "class"},
	}
	if diff := cmp.Diff(want, h.Flush()); diff != "" {
		t.Errorf("mutations mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, h.Pending())
	assert.Nil(t, h.Flush())
}

func TestRemoteHostListeners(t *testing.T) {
	h := NewRemoteHost()
	btn := h.CreateNode("button").(*RemoteNode)
	h.AppendChild(h.Container(), btn)
	h.Flush()

	clicks := 0
	first := func() { clicks++ }
	second := func() { clicks += 10 }

	h.AddEventListener(btn, "click", first)
	require.Equal(t, []protocol.Mutation{{Op: host.OpListen, Node: btn.ID, Name: "click"}}, h.Flush())

	// Swapping handlers stays on the server.
	h.RemoveEventListener(btn, "click", first)
	h.AddEventListener(btn, "click", second)
	assert.Empty(t, h.Flush())

	require.NoError(t, h.Dispatch(&protocol.Event{Node: btn.ID, Name: "click"}))
	assert.Equal(t, 10, clicks)

	// Removing a stale handler is a no-op.
	h.RemoveEventListener(btn, "click", first)
	assert.Empty(t, h.Flush())

	h.RemoveEventListener(btn, "click", second)
	assert.Equal(t, []protocol.Mutation{{Op: host.OpUnlisten, Node: btn.ID, Name: "click"}}, h.Flush())
	assert.ErrorIs(t, h.Dispatch(&protocol.Event{Node: btn.ID, Name: "click"}), ErrHandlerNotFound)
}

func TestRemoteHostDispatchValue(t *testing.T) {
	h := NewRemoteHost()
	in := h.CreateNode("input").(*RemoteNode)

	var got any
	h.AddEventListener(in, "input", func(v any) { got = v })
	require.NoError(t, h.Dispatch(&protocol.Event{Node: in.ID, Name: "input", Value: "abc"}))
	assert.Equal(t, "abc", got)

	h.AddEventListener(in, "change", 42)
	assert.ErrorIs(t, h.Dispatch(&protocol.Event{Node: in.ID, Name: "change"}), ErrUnsupportedHandler)
}

func TestRemoteHostRemoveForgetsSubtree(t *testing.T) {
	h := NewRemoteHost()
	ul := h.CreateNode("ul").(*RemoteNode)
	li := h.CreateNode("li").(*RemoteNode)
	h.AppendChild(ul, li)
	h.AppendChild(h.Container(), ul)
	h.AddEventListener(li, "click", func() {})
	h.Flush()

	h.RemoveChild(h.Container(), ul)
	assert.Equal(t, []protocol.Mutation{{Op: host.OpRemove, Node: ul.ID, Parent: 1}}, h.Flush())
	assert.Nil(t, h.Node(ul.ID))
	assert.Nil(t, h.Node(li.ID))
	assert.Equal(t, 1, h.NodeCount())

	err := h.Dispatch(&protocol.Event{Node: li.ID, Name: "click"})
	var perr *protocol.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, protocol.ErrUnknownNode, perr.Code)
}

func TestRemoteHostAppendMoves(t *testing.T) {
	h := NewRemoteHost()
	a := h.CreateNode("a").(*RemoteNode)
	b := h.CreateNode("b").(*RemoteNode)
	c := h.CreateNode("c").(*RemoteNode)
	h.AppendChild(a, c)
	h.AppendChild(b, c)

	assert.Empty(t, a.Children())
	assert.Equal(t, []*RemoteNode{c}, b.Children())
	assert.Same(t, b, c.Parent())
	assert.Panics(t, func() { h.RemoveChild(a, c) })
}

// The engine drives a RemoteHost like any other host.
func TestRemoteHostWithEngine(t *testing.T) {
	h := NewRemoteHost()
	e := fiber.New(h)

	counter := func(element.Props) *element.Element {
		n, set := fiber.UseState(0)
		return element.H("button", element.Props{
			"onClick": func() { set(func(c int) int { return c + 1 }) },
		}, n)
	}
	require.NoError(t, e.Render(h.Container(), element.CreateElement(counter, nil)))
	e.Flush()

	mount := h.Flush()
	var btn, text uint32
	for _, m := range mount {
		if m.Op == host.OpCreate && m.Type == "button" {
			btn = m.Node
		}
		if m.Op == host.OpCreate && m.Type == host.TextNode {
			text = m.Node
		}
	}
	require.NotZero(t, btn)
	require.NotZero(t, text)
	assert.Contains(t, mount, protocol.Mutation{Op: host.OpListen, Node: btn, Name: "click"})
	assert.Contains(t, mount, protocol.Mutation{Op: host.OpAppend, Node: btn, Parent: protocol.ContainerID})

	require.NoError(t, h.Dispatch(&protocol.Event{Node: btn, Name: "click"}))
	e.Flush()

	assert.Equal(t, []protocol.Mutation{
		{Op: host.OpSetProp, Node: text, Name: "nodeValue", Value: 1},
	}, h.Flush())
}
