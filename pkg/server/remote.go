package server

import (
	"fmt"

	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/host"
	"github.com/vango-dev/mini/pkg/protocol"
)

// RemoteNode is a host node that lives in the browser. The server only
// keeps its identity and tree position.
type RemoteNode struct {
	ID   uint32
	Type string

	parent   *RemoteNode
	children []*RemoteNode
}

func (n *RemoteNode) String() string {
	return fmt.Sprintf("#%d<%s>", n.ID, n.Type)
}

// Parent returns the node's parent, or nil if it is detached.
func (n *RemoteNode) Parent() *RemoteNode { return n.parent }

// Children returns the node's children in order.
func (n *RemoteNode) Children() []*RemoteNode { return n.children }

type listenerKey struct {
	node  uint32
	event string
}

// RemoteHost implements host.Host by recording mutations for a client to
// apply. Event handlers never leave the server: they are kept here keyed by
// node and event name, and the client is only told which events to report.
//
// A RemoteHost is not safe for concurrent use.
type RemoteHost struct {
	container *RemoteNode
	nextID    uint32
	nodes     map[uint32]*RemoteNode
	listeners map[listenerKey]any
	pending   []protocol.Mutation
}

var _ host.Host = (*RemoteHost)(nil)

// NewRemoteHost creates a remote host whose container is the node the
// client mounts into.
func NewRemoteHost() *RemoteHost {
	c := &RemoteNode{ID: protocol.ContainerID, Type: "root"}
	return &RemoteHost{
		container: c,
		nextID:    protocol.ContainerID + 1,
		nodes:     map[uint32]*RemoteNode{c.ID: c},
		listeners: make(map[listenerKey]any),
	}
}

// Container returns the root node.
func (h *RemoteHost) Container() *RemoteNode { return h.container }

// Node resolves a node id, returning nil for unknown or removed nodes.
func (h *RemoteHost) Node(id uint32) *RemoteNode { return h.nodes[id] }

// NodeCount returns the number of live nodes, container included.
func (h *RemoteHost) NodeCount() int { return len(h.nodes) }

// Pending returns the number of mutations waiting for Flush.
func (h *RemoteHost) Pending() int { return len(h.pending) }

// Flush returns the recorded mutations and starts a new batch.
func (h *RemoteHost) Flush() []protocol.Mutation {
	out := h.pending
	h.pending = nil
	return out
}

func (h *RemoteHost) record(m protocol.Mutation) {
	h.pending = append(h.pending, m)
}

// CreateNode implements host.Host.
func (h *RemoteHost) CreateNode(typ string) host.Node {
	n := &RemoteNode{ID: h.nextID, Type: typ}
	h.nextID++
	h.nodes[n.ID] = n
	h.record(protocol.Mutation{Op: host.OpCreate, Node: n.ID, Type: typ})
	return n
}

// SetProperty implements host.Host.
func (h *RemoteHost) SetProperty(n host.Node, name string, value any) {
	h.record(protocol.Mutation{Op: host.OpSetProp, Node: mustRemote(n).ID, Name: name, Value: value})
}

// RemoveProperty implements host.Host.
func (h *RemoteHost) RemoveProperty(n host.Node, name string) {
	h.record(protocol.Mutation{Op: host.OpRemoveProp, Node: mustRemote(n).ID, Name: name})
}

// AddEventListener implements host.Host. The client is told to listen the
// first time a node gets a handler for event; later calls replace the
// handler on the server only. A listen that directly follows the unlisten
// of the same event cancels it.
func (h *RemoteHost) AddEventListener(n host.Node, event string, handler any) {
	rn := mustRemote(n)
	key := listenerKey{rn.ID, event}
	_, had := h.listeners[key]
	h.listeners[key] = handler
	if had {
		return
	}
	if last := len(h.pending) - 1; last >= 0 {
		m := h.pending[last]
		if m.Op == host.OpUnlisten && m.Node == rn.ID && m.Name == event {
			h.pending = h.pending[:last]
			return
		}
	}
	h.record(protocol.Mutation{Op: host.OpListen, Node: rn.ID, Name: event})
}

// RemoveEventListener implements host.Host. Removing a handler that is not
// the current one is a no-op.
func (h *RemoteHost) RemoveEventListener(n host.Node, event string, handler any) {
	rn := mustRemote(n)
	key := listenerKey{rn.ID, event}
	cur, ok := h.listeners[key]
	if !ok || !element.Identical(cur, handler) {
		return
	}
	delete(h.listeners, key)
	h.record(protocol.Mutation{Op: host.OpUnlisten, Node: rn.ID, Name: event})
}

// AppendChild implements host.Host.
func (h *RemoteHost) AppendChild(parent, child host.Node) {
	p, c := mustRemote(parent), mustRemote(child)
	if c.parent != nil {
		c.parent.detach(c)
	}
	c.parent = p
	p.children = append(p.children, c)
	h.record(protocol.Mutation{Op: host.OpAppend, Node: c.ID, Parent: p.ID})
}

// RemoveChild implements host.Host. The removed subtree is forgotten along
// with its listeners.
func (h *RemoteHost) RemoveChild(parent, child host.Node) {
	p, c := mustRemote(parent), mustRemote(child)
	if !p.detach(c) {
		panic(fmt.Sprintf("server: %s is not a child of %s", c, p))
	}
	c.parent = nil
	h.record(protocol.Mutation{Op: host.OpRemove, Node: c.ID, Parent: p.ID})
	h.forget(c)
}

func (h *RemoteHost) forget(n *RemoteNode) {
	delete(h.nodes, n.ID)
	for key := range h.listeners {
		if key.node == n.ID {
			delete(h.listeners, key)
		}
	}
	for _, c := range n.children {
		h.forget(c)
	}
}

// Dispatch invokes the handler registered for ev.
func (h *RemoteHost) Dispatch(ev *protocol.Event) error {
	n := h.nodes[ev.Node]
	if n == nil {
		return protocol.NewError(protocol.ErrUnknownNode, fmt.Sprintf("node #%d", ev.Node))
	}
	handler, ok := h.listeners[listenerKey{n.ID, ev.Name}]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrHandlerNotFound, ev.Name, n)
	}
	if !host.Invoke(handler, host.Event{Type: ev.Name, Target: n, Value: ev.Value}) {
		return fmt.Errorf("%w: %T", ErrUnsupportedHandler, handler)
	}
	return nil
}

func (n *RemoteNode) detach(c *RemoteNode) bool {
	for i, x := range n.children {
		if x == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return true
		}
	}
	return false
}

func mustRemote(n host.Node) *RemoteNode {
	rn, ok := n.(*RemoteNode)
	if !ok {
		panic(fmt.Sprintf("server: foreign node %T", n))
	}
	return rn
}
