package protocol

import (
	"errors"
	"fmt"
	"strconv"
)

// NodeID names a live node on the client. Zero means no node.
type NodeID uint64

// RootID is the mount point every client starts with.
const RootID NodeID = 1

// OpCode is the type of a DOM mutation.
type OpCode uint8

// Mutation op codes. Each mirrors one host call.
const (
	OpCreateElement OpCode = 0x01 // ID, Name=tag, Value=namespace
	OpCreateText    OpCode = 0x02 // ID, Value=content
	OpInsertBefore  OpCode = 0x03 // ID=parent, Child, Ref (0 appends)
	OpRemoveChild   OpCode = 0x04 // ID=parent, Child
	OpSetAttr       OpCode = 0x05 // ID, Name, Value
	OpRemoveAttr    OpCode = 0x06 // ID, Name
	OpSetText       OpCode = 0x07 // ID, Value
	OpListen        OpCode = 0x08 // ID, Name=trigger, Listener
	OpUnlisten      OpCode = 0x09 // ID, Name=trigger, Listener
	OpSetProperty   OpCode = 0x0A // ID, Name, Prop
	OpFocus         OpCode = 0x0B // ID
)

func (op OpCode) String() string {
	switch op {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpInsertBefore:
		return "InsertBefore"
	case OpRemoveChild:
		return "RemoveChild"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpSetText:
		return "SetText"
	case OpListen:
		return "Listen"
	case OpUnlisten:
		return "Unlisten"
	case OpSetProperty:
		return "SetProperty"
	case OpFocus:
		return "Focus"
	default:
		return "Unknown"
	}
}

// Batch errors.
var (
	ErrInvalidOp        = errors.New("protocol: invalid op code")
	ErrInvalidProperty  = errors.New("protocol: unsupported property value")
	ErrUnexpectedFrame  = errors.New("protocol: unexpected frame type")
	ErrSequenceMismatch = errors.New("protocol: frame sequence does not match batch")
)

// Property value kinds on the wire.
const (
	propString byte = 0x00
	propFalse  byte = 0x01
	propTrue   byte = 0x02
)

// Op is one DOM mutation. Which fields are meaningful depends on Code.
type Op struct {
	Code     OpCode
	ID       NodeID
	Child    NodeID
	Ref      NodeID
	Name     string
	Value    string
	Listener uint64
	Prop     any // string or bool
}

func (o Op) String() string {
	switch o.Code {
	case OpCreateElement:
		if o.Value != "" {
			return fmt.Sprintf("CreateElement #%d %s %s", o.ID, o.Name, o.Value)
		}
		return fmt.Sprintf("CreateElement #%d %s", o.ID, o.Name)
	case OpCreateText:
		return fmt.Sprintf("CreateText #%d %q", o.ID, o.Value)
	case OpInsertBefore:
		if o.Ref != 0 {
			return fmt.Sprintf("InsertBefore #%d in #%d before #%d", o.Child, o.ID, o.Ref)
		}
		return fmt.Sprintf("InsertBefore #%d in #%d", o.Child, o.ID)
	case OpRemoveChild:
		return fmt.Sprintf("RemoveChild #%d from #%d", o.Child, o.ID)
	case OpSetAttr:
		return fmt.Sprintf("SetAttr #%d %s=%q", o.ID, o.Name, o.Value)
	case OpRemoveAttr:
		return fmt.Sprintf("RemoveAttr #%d %s", o.ID, o.Name)
	case OpSetText:
		return fmt.Sprintf("SetText #%d %q", o.ID, o.Value)
	case OpListen, OpUnlisten:
		return fmt.Sprintf("%s #%d %s @%d", o.Code, o.ID, o.Name, o.Listener)
	case OpSetProperty:
		return fmt.Sprintf("SetProperty #%d %s=%v", o.ID, o.Name, o.Prop)
	case OpFocus:
		return fmt.Sprintf("Focus #%d", o.ID)
	}
	return "Unknown(" + strconv.Itoa(int(o.Code)) + ")"
}

// Batch is the mutations of one reconciliation pass.
type Batch struct {
	Seq uint64
	Ops []Op
}

// EncodeOpTo appends o to e.
func EncodeOpTo(e *Encoder, o Op) error {
	e.WriteByte(byte(o.Code))
	e.WriteUvarint(uint64(o.ID))
	switch o.Code {
	case OpCreateElement:
		e.WriteString(o.Name)
		e.WriteString(o.Value)
	case OpCreateText, OpSetText:
		e.WriteString(o.Value)
	case OpInsertBefore:
		e.WriteUvarint(uint64(o.Child))
		e.WriteUvarint(uint64(o.Ref))
	case OpRemoveChild:
		e.WriteUvarint(uint64(o.Child))
	case OpSetAttr:
		e.WriteString(o.Name)
		e.WriteString(o.Value)
	case OpRemoveAttr:
		e.WriteString(o.Name)
	case OpListen, OpUnlisten:
		e.WriteString(o.Name)
		e.WriteUvarint(o.Listener)
	case OpSetProperty:
		e.WriteString(o.Name)
		switch v := o.Prop.(type) {
		case string:
			e.WriteByte(propString)
			e.WriteString(v)
		case bool:
			if v {
				e.WriteByte(propTrue)
			} else {
				e.WriteByte(propFalse)
			}
		default:
			return fmt.Errorf("%w: %T", ErrInvalidProperty, o.Prop)
		}
	case OpFocus:
	default:
		return fmt.Errorf("%w: 0x%02x", ErrInvalidOp, byte(o.Code))
	}
	return nil
}

// DecodeOpFrom reads one op from d.
func DecodeOpFrom(d *Decoder) (Op, error) {
	var o Op
	code, err := d.ReadByte()
	if err != nil {
		return o, err
	}
	o.Code = OpCode(code)
	id, err := d.ReadUvarint()
	if err != nil {
		return o, err
	}
	o.ID = NodeID(id)

	switch o.Code {
	case OpCreateElement, OpSetAttr:
		if o.Name, err = d.ReadString(); err != nil {
			return o, err
		}
		o.Value, err = d.ReadString()
	case OpCreateText, OpSetText:
		o.Value, err = d.ReadString()
	case OpInsertBefore:
		var child, ref uint64
		if child, err = d.ReadUvarint(); err != nil {
			return o, err
		}
		if ref, err = d.ReadUvarint(); err != nil {
			return o, err
		}
		o.Child, o.Ref = NodeID(child), NodeID(ref)
	case OpRemoveChild:
		var child uint64
		child, err = d.ReadUvarint()
		o.Child = NodeID(child)
	case OpRemoveAttr:
		o.Name, err = d.ReadString()
	case OpListen, OpUnlisten:
		if o.Name, err = d.ReadString(); err != nil {
			return o, err
		}
		o.Listener, err = d.ReadUvarint()
	case OpSetProperty:
		if o.Name, err = d.ReadString(); err != nil {
			return o, err
		}
		o.Prop, err = decodeProp(d)
	case OpFocus:
	default:
		return o, fmt.Errorf("%w: 0x%02x", ErrInvalidOp, code)
	}
	return o, err
}

func decodeProp(d *Decoder) (any, error) {
	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	switch kind {
	case propString:
		return d.ReadString()
	case propFalse:
		return false, nil
	case propTrue:
		return true, nil
	}
	return nil, fmt.Errorf("%w: kind 0x%02x", ErrInvalidProperty, kind)
}

// EncodeBatch encodes b as a single payload: seq, op count, ops.
func EncodeBatch(b *Batch) ([]byte, error) {
	e := NewEncoder()
	e.WriteUvarint(b.Seq)
	e.WriteUvarint(uint64(len(b.Ops)))
	for _, o := range b.Ops {
		if err := EncodeOpTo(e, o); err != nil {
			return nil, err
		}
	}
	return e.Bytes(), nil
}

// DecodeBatch decodes a payload written by EncodeBatch.
func DecodeBatch(data []byte) (*Batch, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCount(MaxOpsPerBatch)
	if err != nil {
		return nil, err
	}
	b := &Batch{Seq: seq, Ops: make([]Op, 0, count)}
	for range count {
		o, err := DecodeOpFrom(d)
		if err != nil {
			return nil, err
		}
		b.Ops = append(b.Ops, o)
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return b, nil
}

// EncodeFrames splits b into mutation frames whose payloads do not exceed
// maxPayload bytes (MaxPayloadSize when maxPayload is out of range). Every
// frame is a self-contained batch with b's sequence number; splits fall on
// op boundaries and the last frame carries FlagFinal. An op too large for
// any frame fails with ErrFrameTooLarge.
func EncodeFrames(b *Batch, maxPayload int) ([]*Frame, error) {
	if maxPayload <= 0 || maxPayload > MaxPayloadSize {
		maxPayload = MaxPayloadSize
	}
	header := UvarintLen(b.Seq) + UvarintLen(uint64(len(b.Ops)))

	var frames []*Frame
	ops := NewEncoder()
	one := NewEncoder()
	count := 0
	flush := func() {
		e := NewEncoder()
		e.WriteUvarint(b.Seq)
		e.WriteUvarint(uint64(count))
		e.WriteBytes(ops.Bytes())
		payload := make([]byte, e.Len())
		copy(payload, e.Bytes())
		frames = append(frames, &Frame{Type: FrameMutations, Payload: payload})
		ops.Reset()
		count = 0
	}

	for _, o := range b.Ops {
		one.Reset()
		if err := EncodeOpTo(one, o); err != nil {
			return nil, err
		}
		if header+one.Len() > maxPayload {
			return nil, fmt.Errorf("%w: %s op of %d bytes", ErrFrameTooLarge, o.Code, one.Len())
		}
		if count > 0 && header+ops.Len()+one.Len() > maxPayload {
			flush()
		}
		ops.WriteBytes(one.Bytes())
		count++
	}
	if count > 0 || len(frames) == 0 {
		flush()
	}
	frames[len(frames)-1].Flags |= FlagFinal
	return frames, nil
}

// Assembler joins the frames of a split batch.
type Assembler struct {
	batch *Batch
}

// Add consumes a mutation frame. It returns the whole batch once the frame
// carrying FlagFinal arrives, and nil before that.
func (a *Assembler) Add(f *Frame) (*Batch, error) {
	if f.Type != FrameMutations {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedFrame, f.Type)
	}
	part, err := DecodeBatch(f.Payload)
	if err != nil {
		a.batch = nil
		return nil, err
	}
	if a.batch == nil {
		a.batch = part
	} else {
		if part.Seq != a.batch.Seq {
			a.batch = nil
			return nil, fmt.Errorf("%w: got %d, want %d", ErrSequenceMismatch, part.Seq, a.batch.Seq)
		}
		if len(a.batch.Ops)+len(part.Ops) > MaxOpsPerBatch {
			a.batch = nil
			return nil, ErrCollectionTooLarge
		}
		a.batch.Ops = append(a.batch.Ops, part.Ops...)
	}
	if !f.Flags.Has(FlagFinal) {
		return nil, nil
	}
	b := a.batch
	a.batch = nil
	return b, nil
}

// Pending reports whether a batch is partially assembled.
func (a *Assembler) Pending() bool {
	return a.batch != nil
}
