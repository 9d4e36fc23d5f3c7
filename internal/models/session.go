// internal/models/session.go
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Redis key layout shared by the auth, assistant and subscription workers.

func SessionKey(userID, sessionID string) string {
	return fmt.Sprintf("session:%s:%s", userID, sessionID)
}

// SessionPattern matches every session of userID for SCAN.
func SessionPattern(userID string) string {
	return fmt.Sprintf("session:%s:*", userID)
}

// RevokedTokenKey stores the token digest, never the token itself.
func RevokedTokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked:" + hex.EncodeToString(sum[:])
}

func ChatKey(conversationID string) string {
	return "chat:" + conversationID
}

func PlanCacheKey(employerID string) string {
	return "plan:" + employerID
}

// CaptchaKey holds one issued challenge as a hash until it expires.
func CaptchaKey(captchaID string) string {
	return "captcha:" + captchaID
}
