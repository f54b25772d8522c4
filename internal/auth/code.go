package auth

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"strconv"
)

const (
	codeFloor = 100000
	codeSpan  = 900000
	// Largest multiple of codeSpan that fits in a uint32; draws at or above it
	// are rejected so every code is equally likely.
	codeLimit = (1 << 32) / codeSpan * codeSpan
)

// CodeGenerator produces six-digit verification codes.
type CodeGenerator struct {
	rand io.Reader
}

// NewCodeGenerator returns a generator reading from r, or from crypto/rand
// when r is nil.
func NewCodeGenerator(r io.Reader) *CodeGenerator {
	if r == nil {
		r = rand.Reader
	}
	return &CodeGenerator{rand: r}
}

// Generate returns a code in "100000".."999999".
func (g *CodeGenerator) Generate() (string, error) {
	var buf [4]byte
	for {
		if _, err := io.ReadFull(g.rand, buf[:]); err != nil {
			return "", err
		}
		v := binary.BigEndian.Uint32(buf[:])
		if v < codeLimit {
			return strconv.Itoa(codeFloor + int(v%codeSpan)), nil
		}
	}
}
