package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	DefaultCodeLength = 6
	minCodeLength     = 4
	maxCodeLength     = 10
)

// Generator produces numeric codes of a fixed length.
type Generator struct {
	length int
}

// NewGenerator clamps length to 4..10 digits.
func NewGenerator(length int) *Generator {
	if length < minCodeLength {
		length = minCodeLength
	}
	if length > maxCodeLength {
		length = maxCodeLength
	}
	return &Generator{length: length}
}

func (g *Generator) Length() int {
	return g.length
}

func (g *Generator) Generate() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(g.length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", g.length, n), nil
}
