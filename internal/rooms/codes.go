package rooms

import (
	"strings"
	"unicode/utf8"

	"queueroom/internal/config"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Codes generates and checks room join codes of a fixed length drawn from
// a fixed alphabet.
type Codes struct {
	alphabet string
	length   int
}

func NewCodes(cfg config.RoomCodeConfig) *Codes {
	return &Codes{alphabet: cfg.CodeAlphabet, length: cfg.CodeLength}
}

// Generate returns a random code. Uniqueness is enforced by the store.
func (c *Codes) Generate() (string, error) {
	return gonanoid.Generate(c.alphabet, c.length)
}

// Valid reports whether code has the configured format.
func (c *Codes) Valid(code string) bool {
	if utf8.RuneCountInString(code) != c.length {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(c.alphabet, r) {
			return false
		}
	}
	return true
}
