package application

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// maxCodeAttempts bounds retries when a generated code collides.
const maxCodeAttempts = 5

// NewUniqueCode returns a random upper-case base36 code of model.UniqueCodeLength.
func NewUniqueCode() (string, error) {
	buf := make([]byte, model.UniqueCodeLength)
	limit := big.NewInt(int64(len(codeAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate unique code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}

	return string(buf), nil
}
