package utils

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh random identifier for a stored record.
func NewID() string {
	return uuid.NewString()
}

// refAlphabet leaves out 0/O and 1/I so refs read well over the phone.
const refAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewOrderRef returns a customer-facing order reference such as
// ORD-20261016-7KQ2ZD.
func NewOrderRef(now time.Time) (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = refAlphabet[int(b[i])%len(refAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), b), nil
}
