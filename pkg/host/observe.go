package host

// observed decorates a Host, reporting each call before forwarding it.
type observed struct {
	next Host
	fn   func(Mutation)
}

// Observe returns a Host that calls fn for every operation and then
// forwards it to h. Create mutations are reported after the node exists so
// that Mutation.Node is set.
func Observe(h Host, fn func(Mutation)) Host {
	return &observed{next: h, fn: fn}
}

func (o *observed) CreateNode(typ string) Node {
	n := o.next.CreateNode(typ)
	o.fn(Mutation{Op: OpCreate, Node: n, Type: typ})
	return n
}

func (o *observed) SetProperty(n Node, name string, value any) {
	o.fn(Mutation{Op: OpSetProp, Node: n, Name: name, Value: value})
	o.next.SetProperty(n, name, value)
}

func (o *observed) RemoveProperty(n Node, name string) {
	o.fn(Mutation{Op: OpRemoveProp, Node: n, Name: name})
	o.next.RemoveProperty(n, name)
}

func (o *observed) AddEventListener(n Node, event string, handler any) {
	o.fn(Mutation{Op: OpListen, Node: n, Name: event, Value: handler})
	o.next.AddEventListener(n, event, handler)
}

func (o *observed) RemoveEventListener(n Node, event string, handler any) {
	o.fn(Mutation{Op: OpUnlisten, Node: n, Name: event, Value: handler})
	o.next.RemoveEventListener(n, event, handler)
}

func (o *observed) AppendChild(parent, child Node) {
	o.fn(Mutation{Op: OpAppend, Node: child, Parent: parent})
	o.next.AppendChild(parent, child)
}

func (o *observed) RemoveChild(parent, child Node) {
	o.fn(Mutation{Op: OpRemove, Node: child, Parent: parent})
	o.next.RemoveChild(parent, child)
}

// Recorder is a Host that keeps a log of every mutation it forwards.
type Recorder struct {
	Host
	log []Mutation
}

// NewRecorder wraps h with a mutation log.
func NewRecorder(h Host) *Recorder {
	r := &Recorder{}
	r.Host = Observe(h, func(m Mutation) {
		r.log = append(r.log, m)
	})
	return r
}

// Mutations returns the mutations recorded since the last Reset.
func (r *Recorder) Mutations() []Mutation {
	return r.log
}

// Count returns how many recorded mutations have the given op.
func (r *Recorder) Count(op MutationOp) int {
	n := 0
	for _, m := range r.log {
		if m.Op == op {
			n++
		}
	}
	return n
}

// Reset clears the mutation log.
func (r *Recorder) Reset() {
	r.log = nil
}
