package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// FlowID identifies one login attempt.
type FlowID [16]byte

func NewFlowID() (FlowID, error) {
	var fid FlowID
	_, err := rand.Read(fid[:])
	return fid, err
}

func (f FlowID) Bytes() []byte {
	return f[:]
}

func (f FlowID) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(f[:])
}

// NewOTP generates a numeric one-time code of the given length using
// crypto/rand. Leading zeros are valid.
func NewOTP(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", errors.New("invalid otp digits")
	}

	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	otp := b.String()
	if len(otp) != digits {
		return "", fmt.Errorf("invalid otp generation length")
	}
	return otp, nil
}

// IsNumericCode reports whether s consists of exactly digits numeric
// characters. Used for local pre-validation so malformed codes never reach
// the network.
func IsNumericCode(s string, digits int) bool {
	if len(s) != digits {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
