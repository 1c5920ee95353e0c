package utils

import (
	"crypto/rand"
	"math/big"
)

const apiKeyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateAPIKey — случайный ключ проекта из латиницы и цифр.
func GenerateAPIKey(length int) (string, error) {
	if length <= 0 {
		length = 32
	}
	b := make([]byte, length)
	max := big.NewInt(int64(len(apiKeyAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = apiKeyAlphabet[n.Int64()]
	}
	return string(b), nil
}
