package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateRandomString draws length characters uniformly from charset using
// crypto/rand.
func GenerateRandomString(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			panic(fmt.Sprintf("failed to generate random string: %v", err))
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

// GenerateLoginCode returns a 6-digit code uniform over [100000, 999999]:
// a nonzero leading digit followed by five unrestricted digits.
func GenerateLoginCode() string {
	return GenerateRandomString(1, "123456789") + GenerateRandomString(5, "0123456789")
}
