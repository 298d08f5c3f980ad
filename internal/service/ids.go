package service

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// generateID produces collision-resistant string ids for new records
func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return "k" + strings.ToLower(base32.StdEncoding.EncodeToString(b)[:24])
}
