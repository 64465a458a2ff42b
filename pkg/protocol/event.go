package protocol

import "errors"

// ErrInvalidEvent is returned for event payloads that do not decode.
var ErrInvalidEvent = errors.New("protocol: invalid event payload")

// Event is a client event addressed to a listener announced by an
// OpListen op. Detail is opaque to the protocol; browsers send the event's
// value or key.
type Event struct {
	Listener uint64
	Trigger  string
	Detail   string
}

// EncodeEvent encodes ev as a FrameEvent payload.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	EncodeEventTo(e, ev)
	return e.Bytes()
}

// EncodeEventTo appends ev to e.
func EncodeEventTo(e *Encoder, ev *Event) {
	e.WriteUvarint(ev.Listener)
	e.WriteString(ev.Trigger)
	e.WriteString(ev.Detail)
}

// DecodeEvent decodes a FrameEvent payload.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	ev, err := DecodeEventFrom(d)
	if err != nil {
		return nil, err
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return ev, nil
}

// DecodeEventFrom reads an event from d.
func DecodeEventFrom(d *Decoder) (*Event, error) {
	var ev Event
	var err error
	if ev.Listener, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Listener == 0 {
		return nil, ErrInvalidEvent
	}
	if ev.Trigger, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Detail, err = d.ReadString(); err != nil {
		return nil, err
	}
	return &ev, nil
}
