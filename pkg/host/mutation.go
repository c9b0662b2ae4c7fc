package host

import "fmt"

// MutationOp is the kind of host operation.
type MutationOp uint8

const (
	OpCreate     MutationOp = 0x01 // CreateNode
	OpSetProp    MutationOp = 0x02 // SetProperty
	OpRemoveProp MutationOp = 0x03 // RemoveProperty
	OpListen     MutationOp = 0x04 // AddEventListener
	OpUnlisten   MutationOp = 0x05 // RemoveEventListener
	OpAppend     MutationOp = 0x06 // AppendChild
	OpRemove     MutationOp = 0x07 // RemoveChild
)

// String returns the string representation of the MutationOp.
func (op MutationOp) String() string {
	switch op {
	case OpCreate:
		return "Create"
	case OpSetProp:
		return "SetProp"
	case OpRemoveProp:
		return "RemoveProp"
	case OpListen:
		return "Listen"
	case OpUnlisten:
		return "Unlisten"
	case OpAppend:
		return "Append"
	case OpRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// Mutation records one Host call.
type Mutation struct {
	Op     MutationOp
	Node   Node   // target node (child for Append/Remove)
	Parent Node   // parent for Append/Remove
	Type   string // node type for Create
	Name   string // property or event name
	Value  any    // property value or handler
}

// String returns a compact description, e.g. "SetProp(nodeValue=12)".
func (m Mutation) String() string {
	switch m.Op {
	case OpCreate:
		return fmt.Sprintf("Create(%s)", m.Type)
	case OpSetProp:
		return fmt.Sprintf("SetProp(%s=%v)", m.Name, m.Value)
	case OpRemoveProp:
		return fmt.Sprintf("RemoveProp(%s)", m.Name)
	case OpListen:
		return fmt.Sprintf("Listen(%s)", m.Name)
	case OpUnlisten:
		return fmt.Sprintf("Unlisten(%s)", m.Name)
	case OpAppend:
		return fmt.Sprintf("Append(%s)", describe(m.Node))
	case OpRemove:
		return fmt.Sprintf("Remove(%s)", describe(m.Node))
	default:
		return "Unknown"
	}
}

func describe(n Node) string {
	if mn, ok := n.(*MemoryNode); ok && mn != nil {
		if mn.Type == TextNode {
			return fmt.Sprintf("%q", mn.Text())
		}
		return mn.Type
	}
	return fmt.Sprintf("%v", n)
}
