package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reNonDigit = regexp.MustCompile(`\D`)
	reSearch   = regexp.MustCompile(`^[A-Za-z0-9 _'\-]{1,50}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Password enforces the registration minimum. bcrypt caps input at 72 bytes.
func Password(s string) bool {
	return len(s) >= 6 && len(s) <= 72
}

// CardDigits strips everything but digits from a card number.
func CardDigits(s string) string {
	return reNonDigit.ReplaceAllString(s, "")
}

// ID parses a positive integer identifier from a path or form value.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil && n > 0
}

// Qty parses a requested quantity, defaulting to 1 and clamping abuse.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 99 {
		return 99
	}
	return n
}

// Search validates a catalog search keyword.
func Search(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reSearch.MatchString(s)
}

// Sort normalizes a stock-sort key; anything else means unsorted.
func Sort(s string) string {
	switch s {
	case "qty_asc", "qty_desc":
		return s
	}
	return ""
}

// Name validates a displayable username.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}
