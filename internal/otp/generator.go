// Package otp issues and throttles the one-time codes sent to visitors.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeSpan covers the six-digit range 100000-999999 inclusive.
var codeSpan = big.NewInt(900000)

// Generate returns a uniformly random six-digit code. The first digit is
// never zero, so the code survives naive numeric round-trips.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
