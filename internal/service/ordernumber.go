package service

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// NewOrderNumber returns "<prefix>-YYYYMMDD-<10 hex chars>". 40 random bits
// per day keep collisions rare; the unique index catches the rest.
func NewOrderNumber(prefix string, now time.Time) string {
	b := make([]byte, 5)
	_, _ = rand.Read(b)
	return prefix + "-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(b))
}
