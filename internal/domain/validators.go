package domain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrPickCount is returned when the pick has the wrong number of tokens
	ErrPickCount = errors.New("wrong number of picked values")
	// ErrPickNotNumber is returned when a token is not an integer
	ErrPickNotNumber = errors.New("pick contains a non-numeric value")
	// ErrPickRange is returned when a value falls outside the allowed range
	ErrPickRange = errors.New("pick value out of range")
	// ErrPickDuplicate is returned when the same value appears twice
	ErrPickDuplicate = errors.New("pick contains duplicate values")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// IsValidName reports whether s looks like a full name: at least two
// whitespace-separated tokens and at least 5 characters after trimming.
func IsValidName(s string) bool {
	s = strings.TrimSpace(s)
	return len(strings.Fields(s)) >= 2 && len(s) >= 5
}

// digitsOnly strips everything that is not an ASCII digit
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone strips formatting from a Brazilian phone number and
// reports whether the remaining digits form a valid one (10 or 11 digits,
// with or without the two-digit area code separator characters).
func NormalizePhone(s string) (string, bool) {
	digits := digitsOnly(s)
	return digits, len(digits) == 10 || len(digits) == 11
}

// NormalizeCPF strips formatting from a CPF and reports whether exactly
// 11 digits remain. Check digits are deliberately not verified; the sheet
// is the source of truth and the bot only screens for obvious typos.
func NormalizeCPF(s string) (string, bool) {
	digits := digitsOnly(s)
	return digits, len(digits) == 11
}

// IsValidEmail reports whether s has the shape local@domain.tld with a
// TLD of at least two characters
func IsValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// ParsePick parses a whitespace-separated list of integers as a weekly
// pick. It requires exactly count distinct values, each within [min, max].
// On success it returns the values sorted ascending together with the
// canonical string form: two-digit zero-padded, space-joined.
func ParsePick(text string, count, min, max int) ([]int, string, error) {
	tokens := strings.Fields(text)
	if len(tokens) != count {
		return nil, "", fmt.Errorf("%w: got %d, want %d", ErrPickCount, len(tokens), count)
	}

	values := make([]int, 0, count)
	seen := make(map[int]bool, count)
	for _, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %q", ErrPickNotNumber, tok)
		}
		if n < min || n > max {
			return nil, "", fmt.Errorf("%w: %d not in [%d,%d]", ErrPickRange, n, min, max)
		}
		if seen[n] {
			return nil, "", fmt.Errorf("%w: %d", ErrPickDuplicate, n)
		}
		seen[n] = true
		values = append(values, n)
	}

	sort.Ints(values)

	parts := make([]string, len(values))
	for i, n := range values {
		parts[i] = fmt.Sprintf("%02d", n)
	}

	return values, strings.Join(parts, " "), nil
}
