package utils

import "os"

// GetJWTSecret returns JWT_SECRET. It is empty when unset, which fails every token.
func GetJWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}
