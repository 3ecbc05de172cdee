// Package token issues opaque bearer tokens and short numeric codes.
//
// Both draw from crypto/rand only. A failing randomness source panics: there
// is no weaker fallback.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	opaqueTokenBytes = 32

	codeMin = 100000
	codeMax = 999999
)

// Generator produces session tokens and verification codes.
type Generator interface {
	NewOpaque() string
	NewNumericCode() string
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

// NewOpaque returns 256 random bits, hex encoded.
func (g *RandomGenerator) NewOpaque() string {
	b := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("token: crypto/rand unavailable: %v", err))
	}

	return hex.EncodeToString(b)
}

// NewNumericCode returns six digits uniform over 100000..999999.
func (g *RandomGenerator) NewNumericCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		panic(fmt.Sprintf("token: crypto/rand unavailable: %v", err))
	}

	return fmt.Sprintf("%06d", n.Int64()+codeMin)
}
