// Package protocol implements the binary wire format between a remote
// document on the server and the page that mirrors it.
//
// The server reconciles against a host that assigns every live node a
// NodeID and records each host call as an Op. After a pass the ops go to
// the client as one mutation batch; the client replays them in order.
// Events travel the other way, addressed by the listener id the server
// announced in an OpListen op.
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
//   - FrameHandshake (0x00): ClientHello, then ServerHello
//   - FrameEvent (0x01): client → server events
//   - FrameMutations (0x02): server → client mutation batches
//   - FrameControl (0x03): ping, pong and close
//   - FrameError (0x05): error message
//
// # Encoding
//
//   - Varint: protobuf-style unsigned integers (ids, counts, lengths)
//   - Length-prefixed: strings prefixed with a varint length
//   - Big-endian: the uint16 frame length and error codes
//
// # Mutation Batches
//
// A batch payload is the pass sequence number, the op count and the ops:
//
//	[Seq: varint][Count: varint][Op]...
//	[Code: 1 byte][ID: varint][operands per code]
//
// A batch too large for one frame is split on op boundaries. Each frame
// is itself a valid batch with the same sequence number, and only the
// last one carries FlagFinal:
//
//	frames, err := protocol.EncodeFrames(batch, 0)
//
//	var a protocol.Assembler
//	for _, f := range frames {
//	    b, err := a.Add(f) // nil until the final frame
//	}
//
// # Handshake
//
//	Client                          Server
//	  │                                │
//	  │──── ClientHello ─────────────>│
//	  │     (version, client name)    │
//	  │<──── ServerHello ─────────────│
//	  │     (status, document, seq)   │
//	  │<──── Mutations (mount) ───────│
//
// # Limits
//
// Decoders never trust a length prefix: strings are capped at
// MaxStringLen, op counts at MaxOpsPerBatch, and both are checked against
// the bytes actually left before anything is allocated.
package protocol
