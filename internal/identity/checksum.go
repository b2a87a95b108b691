package identity

import (
	"strconv"
	"strings"
)

// checkWeights is the positional weight table applied to the reversed digit
// string. Digits beyond the table length do not participate in the checksum.
var checkWeights = [15]int{71, 67, 59, 53, 47, 43, 41, 37, 29, 23, 19, 17, 13, 7, 3}

// stripFormatting removes the separators commonly typed into tax identifiers.
func stripFormatting(number string) string {
	r := strings.NewReplacer(".", "", "-", "", " ", "")
	return r.Replace(number)
}

// CheckDigit computes the verification digit for a tax identifier.
//
// The identifier is stripped of formatting, reversed, and each digit is
// multiplied by its positional weight. The verification digit is the sum
// modulo 11, passed through unchanged when the remainder is 0 or 1 and
// subtracted from 11 otherwise.
func CheckDigit(number string) (string, error) {
	clean := stripFormatting(number)
	if clean == "" {
		return "", &ValidationError{Field: "identifier", Value: number, Message: ErrEmptyIdentifier.Error()}
	}

	sum := 0
	for i := 0; i < len(clean); i++ {
		c := clean[len(clean)-1-i]
		if c < '0' || c > '9' {
			return "", &ValidationError{Field: "identifier", Value: number, Message: "contains non-numeric characters"}
		}
		if i < len(checkWeights) {
			sum += int(c-'0') * checkWeights[i]
		}
	}

	remainder := sum % 11
	digit := remainder
	if remainder > 1 {
		digit = 11 - remainder
	}
	return strconv.Itoa(digit), nil
}

// IsValid reports whether digit is the verification digit of number. The
// comparison is exact string equality against the computed digit; a malformed
// number is never valid.
func IsValid(number, digit string) bool {
	computed, err := CheckDigit(number)
	if err != nil {
		return false
	}
	return computed == digit
}
