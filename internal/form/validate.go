package form

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// MinPasswordLength is the enforced minimum for login and signup.
const MinPasswordLength = 8

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// PasswordPlaceholder is the hint shown in password inputs.
var PasswordPlaceholder = fmt.Sprintf("Min. %d characters", MinPasswordLength)

func ValidateEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return "Email is required"
	}
	if !emailRe.MatchString(email) {
		return "Please enter a valid email address"
	}
	return ""
}

func ValidatePassword(pw string) string {
	if pw == "" {
		return "Password is required"
	}
	if len([]rune(pw)) < MinPasswordLength {
		return fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	}
	return ""
}

func ValidateConfirm(pw, confirm string) string {
	if confirm == "" {
		return "Please confirm your password"
	}
	if confirm != pw {
		return "Passwords do not match"
	}
	return ""
}

// ValidateURL checks a drop URL. strict requires an absolute http(s) URL.
func ValidateURL(raw string, strict bool) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "URL is required"
	}
	if !strict {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "Please enter a valid URL"
	}
	return ""
}

func ValidateTopic(topic string) string {
	if strings.TrimSpace(topic) == "" {
		return "Topic is required"
	}
	return ""
}
