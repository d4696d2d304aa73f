package service

import (
	"net/url"
	"strings"
)

const maxURLLength = 2048

// IsValidURL принимает только абсолютные http(s) ссылки с хостом
func IsValidURL(raw string) bool {
	if raw == "" || len(raw) > maxURLLength {
		return false
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}

	return u.Hostname() != ""
}
