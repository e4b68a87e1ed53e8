package utils

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

func ToString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func ToUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
