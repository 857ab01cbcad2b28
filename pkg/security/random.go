package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// UpperAlphaNumeric is the alphabet used for human-facing codes.
const UpperAlphaNumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString draws length runes uniformly from alphabet using crypto/rand.
func RandomString(alphabet string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	chars := []rune(alphabet)
	if len(chars) == 0 {
		return "", fmt.Errorf("alphabet cannot be empty")
	}

	max := big.NewInt(int64(len(chars)))
	result := make([]rune, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random index: %w", err)
		}
		result[i] = chars[n.Int64()]
	}
	return string(result), nil
}
