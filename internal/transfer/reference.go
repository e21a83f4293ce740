package transfer

import (
	"crypto/rand"
	"math/big"
)

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewReferenceNumber returns a user-facing reference such as CB7K2M9QX4TA.
func NewReferenceNumber() (string, error) {
	buf := make([]byte, 0, 12)
	buf = append(buf, 'C', 'B')
	limit := big.NewInt(int64(len(referenceAlphabet)))
	for i := 0; i < 10; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf = append(buf, referenceAlphabet[n.Int64()])
	}
	return string(buf), nil
}
