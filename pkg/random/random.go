package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet содержит все символы, допустимые в коротком коде
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewRandomString генерирует криптослучайную строку длины length
// из 62-символьного алфавита. Уникальность не гарантируется.
func NewRandomString(length int) (string, error) {
	result := make([]byte, length)
	max := big.NewInt(int64(len(Alphabet)))

	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		result[i] = Alphabet[n.Int64()]
	}

	return string(result), nil
}
