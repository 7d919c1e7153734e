package internal

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// cardIDAlphabet gives short lowercase base36 ids
const cardIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// cardIDLength is the number of characters in a generated card ID
const cardIDLength = 9

// GenerateCardID creates a short random opaque ID for a card
func GenerateCardID() string {
	return gonanoid.MustGenerate(cardIDAlphabet, cardIDLength)
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}

// isAlphaNumeric checks if a rune is an ASCII letter or digit
func isAlphaNumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
