package utils

import (
	"crypto/md5"
	"fmt"
)

// HashString is used to fold credentials into cache keys so the raw
// secret never appears in a key or a log line.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}
