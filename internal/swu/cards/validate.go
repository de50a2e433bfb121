package cards

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MaxSetCodeLength bounds partition codes accepted for sync.
const MaxSetCodeLength = 10

// ErrInvalidSetCode is returned for unusable partition codes.
var ErrInvalidSetCode = errors.New("invalid set code")

// ValidateSetCodes checks the partition codes requested for a sync and
// returns them trimmed.
func ValidateSetCodes(codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: no set codes provided", ErrInvalidSetCode)
	}

	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, fmt.Errorf("%w: empty set code found", ErrInvalidSetCode)
		}
		if len(code) > MaxSetCodeLength {
			return nil, fmt.Errorf("%w: set code %q too long", ErrInvalidSetCode, code)
		}
		for _, r := range code {
			if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return nil, fmt.Errorf("%w: set code %q must be alphanumeric", ErrInvalidSetCode, code)
			}
		}
		out = append(out, code)
	}

	return out, nil
}
