package giftcard

import (
	"fmt"

	"github.com/google/uuid"
)

// Unambiguous alphabet: no I, O, 0 or 1. Its length is 32 so five random
// bits select a symbol.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength = 16
	codeGroup  = 4
)

func generateCode() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate gift card code: %w", err)
	}

	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[id[i]&31]
	}
	return string(b), nil
}
