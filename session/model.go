package session

// Marker kinds. An identity marker is written immediately after credential
// verification and lives for the short pre-verification window; a verified
// marker is written only on OTP success or a trusted-device skip and lives
// for the long session window.
const (
	KindIdentity uint8 = 1
	KindVerified uint8 = 2
)

// Marker is one persisted session marker.
type Marker struct {
	SessionID string
	UserID    string
	Username  string
	Role      string
	Kind      uint8
	CreatedAt int64
	ExpiresAt int64
}
