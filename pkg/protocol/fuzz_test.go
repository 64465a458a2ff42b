package protocol

import "testing"

func FuzzDecodeFrame(f *testing.F) {
	f.Add((&Frame{Type: FrameEvent, Payload: []byte{0x01, 0x02}}).Encode())
	f.Add((&Frame{Type: FrameMutations, Flags: FlagFinal, Payload: []byte("test")}).Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = DecodeFrame(data)
	})
}

// FuzzDecodeBatch checks that arbitrary payloads never panic and that
// whatever decodes can be encoded again.
func FuzzDecodeBatch(f *testing.F) {
	seed, _ := EncodeBatch(&Batch{Seq: 3, Ops: sampleOps()})
	f.Add(seed)
	f.Add([]byte{0x00, 0x00})
	f.Add([]byte{0x01, 0xFF, 0xFF, 0xFF, 0x0F})

	f.Fuzz(func(t *testing.T, data []byte) {
		b, err := DecodeBatch(data)
		if err != nil {
			return
		}
		if _, err := EncodeBatch(b); err != nil {
			t.Fatalf("EncodeBatch() of a decoded batch failed: %v", err)
		}
	})
}

func FuzzDecodeEvent(f *testing.F) {
	f.Add(EncodeEvent(&Event{Listener: 1, Trigger: "click"}))
	f.Add(EncodeEvent(&Event{Listener: 2, Trigger: "input", Detail: "hello"}))

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = DecodeEvent(data)
	})
}
