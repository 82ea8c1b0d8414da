package guests

import (
	"errors"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

const (
	phoneMinDigits = 10
	phoneMaxDigits = 15
)

// NormalizePhone canonicalizes a free-form phone number into international
// form: all non-digits are stripped, a single leading zero is replaced with
// the country calling code, and the code is prepended when absent. The result
// is "+<digits>". Pure and idempotent: normalizing an already-normalized
// number returns it unchanged.
func NormalizePhone(raw, countryCode string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", ErrInvalidPhone
	}

	if strings.HasPrefix(digits, "0") {
		digits = countryCode + digits[1:]
	} else if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}

	if len(digits) < phoneMinDigits || len(digits) > phoneMaxDigits {
		return "", ErrInvalidPhone
	}
	return "+" + digits, nil
}
