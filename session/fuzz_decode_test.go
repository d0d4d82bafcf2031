package session

import "testing"

// FuzzDecodeMarker checks that arbitrary bytes never panic the decoder and
// that anything it accepts re-encodes cleanly.
func FuzzDecodeMarker(f *testing.F) {
	seed, err := encodeMarker(&Marker{
		SessionID: "sess-1",
		UserID:    "user-1",
		Username:  "alice",
		Role:      "admin",
		Kind:      KindVerified,
		CreatedAt: 1700000000,
		ExpiresAt: 1700086400,
	})
	if err != nil {
		f.Fatalf("seed encode failed: %v", err)
	}
	f.Add(seed)
	f.Add([]byte{})
	f.Add([]byte{0x01})
	f.Add([]byte{0xff, 0x00, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		m, err := decodeMarker(data)
		if err != nil {
			return
		}
		if _, err := encodeMarker(m); err != nil {
			t.Fatalf("re-encode of accepted marker failed: %v", err)
		}
	})
}
