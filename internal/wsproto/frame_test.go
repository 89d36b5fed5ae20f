package wsproto

import "testing"

func TestEncodeTextHello(t *testing.T) {
	out, err := EncodeText("Hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x81, 0x05, 0x48, 0x65, 0x6C, 0x6C, 0x6F}
	if len(out) != len(want) {
		t.Fatalf("len = %d, want %d (% X)", len(out), len(want), out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, out[i], want[i])
		}
	}
}

func TestDecodeFrameRoundTrip(t *testing.T) {
	encoded, err := EncodeFrame(OpBinary, []byte("payload data"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	frame, consumed, err := DecodeFrame(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumed != len(encoded) {
		t.Errorf("consumed = %d, want %d", consumed, len(encoded))
	}
	if !frame.Final || frame.Opcode != OpBinary {
		t.Errorf("frame = %+v", frame)
	}
	if string(frame.Payload) != "payload data" {
		t.Errorf("payload = %q", frame.Payload)
	}
}

func TestDecodeFrameIncomplete(t *testing.T) {
	frame, consumed, err := DecodeFrame([]byte{0x81})
	if err != nil || frame != nil || consumed != 0 {
		t.Fatalf("expected incomplete-frame zero result, got frame=%v consumed=%d err=%v", frame, consumed, err)
	}
}

func TestDecodeMaskedClientFrame(t *testing.T) {
	payload := []byte("abc")
	key := [4]byte{0x11, 0x22, 0x33, 0x44}
	masked := make([]byte, len(payload))
	copy(masked, payload)
	for i := range masked {
		masked[i] ^= key[i%4]
	}

	raw := []byte{0x81, 0x80 | byte(len(payload))}
	raw = append(raw, key[:]...)
	raw = append(raw, masked...)

	frame, consumed, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumed != len(raw) {
		t.Errorf("consumed = %d, want %d", consumed, len(raw))
	}
	if string(frame.Payload) != "abc" {
		t.Errorf("payload = %q, want abc", frame.Payload)
	}
}

func TestDecodeFrameRejectsOversizedLength(t *testing.T) {
	raw := []byte{0x81, 127, 0, 0, 0, 0, 0, 0x20, 0, 0} // declares > 1 MiB payload
	if _, _, err := DecodeFrame(raw); err != ErrPayloadTooLarge {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestEncodeFrameRejectsOversizedPayload(t *testing.T) {
	big := make([]byte, MaxPayloadLen+1)
	if _, err := EncodeFrame(OpBinary, big); err != ErrPayloadTooLarge {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
}
