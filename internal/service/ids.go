package service

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// NewID returns a random entity identifier.
func NewID() string {
	return uuid.NewString()
}

func newID() string {
	return NewID()
}

// newCode returns a 6-digit numeric verification code.
func newCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}
