package rate

import (
	"crypto/sha256"
	"encoding/base64"
)

func loginEmailKey(prefix, email string) string {
	return prefix + ":rl:login:email:" + digest(email)
}

func loginIPKey(prefix, ip string) string {
	return prefix + ":rl:login:ip:" + digest(ip)
}

// digest keeps raw identifiers out of Redis keyspace dumps.
func digest(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
