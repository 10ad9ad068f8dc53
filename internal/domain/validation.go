package domain

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// Пароль: мин 8, хотя бы одна буква и одна цифра
	letterRe = regexp.MustCompile(`[A-Za-z]`)
	digitRe  = regexp.MustCompile(`[0-9]`)
)

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

func ValidPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	return letterRe.MatchString(s) && digitRe.MatchString(s)
}
