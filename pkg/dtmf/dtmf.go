// Package dtmf describes the DTMF keypad alphabet.
package dtmf

import (
	"fmt"
	"strings"

	"github.com/aretw0/senddtmf/pkg/domain"
)

// Symbols is the full 16-key DTMF alphabet.
const Symbols = "0123456789ABCD*#"

// IsSymbol reports whether r is a DTMF key. Letters are case-insensitive.
func IsSymbol(r rune) bool {
	if r >= 'a' && r <= 'd' {
		r -= 'a' - 'A'
	}
	return strings.ContainsRune(Symbols, r)
}

// Validate returns an error wrapping domain.ErrInvalidSequence for the first
// rune of seq that is not a DTMF key.
func Validate(seq string) error {
	if seq == "" {
		return domain.ErrMissingArgument
	}
	for i, r := range seq {
		if !IsSymbol(r) {
			return fmt.Errorf("%w: %q at offset %d", domain.ErrInvalidSequence, r, i)
		}
	}
	return nil
}
