// Package protocol implements the binary wire protocol between a mini
// server and its browser client.
//
// The server streams host mutations (create node, set property, append
// child, ...) produced by each commit; the client applies them to the real
// DOM and sends back events for nodes that have listeners.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameEvent (0x01): Client → Server events
//   - FrameMutations (0x02): Server → Client mutation batches
//   - FrameControl (0x03): Ping, pong and close
//   - FrameError (0x05): Error message
//
// # Encoding
//
//   - Varint: Compact encoding for small integers (protobuf-style)
//   - ZigZag: Signed integers encoded as unsigned varints
//   - Length-prefixed: Strings prefixed with varint length
//   - Values: one tag byte followed by the value (see WriteValue)
//
// # Mutations
//
// A batch carries a sequence number and the mutations of one commit:
//
//	[Seq: varint][Count: varint]{[Op: byte][Node: varint][operands]}...
//
// Node IDs are allocated by the server. Node 1 is the container the client
// mounts into.
//
// # Events
//
//	[Seq: varint][Node: varint][Name: string][Value]
package protocol
