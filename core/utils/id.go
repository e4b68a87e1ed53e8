package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

func GenerateID() string {
	id, err := gonanoid.Generate("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz", 7)
	if err != nil {
		return ""
	}
	return id
}

// GenerateTicketCode returns a short human-readable support ticket code,
// e.g. "TK-7G2M9XQK". Uppercase only so it survives being read aloud.
func GenerateTicketCode() string {
	id, err := gonanoid.Generate("0123456789ABCDEFGHJKMNPQRSTUVWXYZ", 8)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("TK-%s", id)
}

// GenerateOTP returns a 6-digit one-time code.
func GenerateOTP() string {
	otp, err := gonanoid.Generate("0123456789", 6)
	if err != nil {
		return "000000"
	}
	return otp
}

// GenerateRandomString generates a cryptographically secure random string
func GenerateRandomString(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to nanoid if crypto/rand fails
		id, _ := gonanoid.Generate("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz", length)
		return id
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length]
}
