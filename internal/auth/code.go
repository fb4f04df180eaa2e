package auth

import (
	"math/rand"
	"strconv"
	"time"
)

const codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewAffiliateCode builds a short base36 code: millisecond timestamp plus five
// random characters. Uniqueness is enforced at the store; callers retry on the
// rare collision.
func NewAffiliateCode() string {
	b := make([]byte, 5)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + string(b)
}
