package domain

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestIsValidName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"full name", "Maria Silva", true},
		{"three tokens", "Jose da Silva", true},
		{"extra whitespace", "  Ana   Souza  ", true},
		{"single token", "Maria", false},
		{"two short tokens", "Jo Li", false},
		{"empty", "", false},
		{"only spaces", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidName(tt.input); got != tt.want {
				t.Errorf("IsValidName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantDigits string
		wantOK     bool
	}{
		{"mobile with formatting", "(11) 98765-4321", "11987654321", true},
		{"landline plain", "1133334444", "1133334444", true},
		{"mobile plain", "11987654321", "11987654321", true},
		{"spaces and dashes", "11 9 8765-4321", "11987654321", true},
		{"too short", "987654321", "987654321", false},
		{"too long", "5511987654321", "5511987654321", false},
		{"letters only", "abc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digits, ok := NormalizePhone(tt.input)
			if digits != tt.wantDigits || ok != tt.wantOK {
				t.Errorf("NormalizePhone(%q) = (%q, %v), want (%q, %v)",
					tt.input, digits, ok, tt.wantDigits, tt.wantOK)
			}
		})
	}
}

func TestNormalizeCPF(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantDigits string
		wantOK     bool
	}{
		{"formatted", "123.456.789-09", "12345678909", true},
		{"plain", "12345678909", "12345678909", true},
		{"ten digits", "1234567890", "1234567890", false},
		{"twelve digits", "123456789012", "123456789012", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digits, ok := NormalizeCPF(tt.input)
			if digits != tt.wantDigits || ok != tt.wantOK {
				t.Errorf("NormalizeCPF(%q) = (%q, %v), want (%q, %v)",
					tt.input, digits, ok, tt.wantDigits, tt.wantOK)
			}
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain", "maria@example.com", true},
		{"subdomain", "ana@mail.example.com.br", true},
		{"trimmed", "  jose@example.org  ", true},
		{"no at", "maria.example.com", false},
		{"no tld", "maria@example", false},
		{"one-char tld", "maria@example.c", false},
		{"space in local part", "ma ria@example.com", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidEmail(tt.input); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePickCanonicalForm(t *testing.T) {
	values, canonical, err := ParsePick("05 33 1 60 12 44", 6, 1, 60)
	if err != nil {
		t.Fatalf("ParsePick returned error: %v", err)
	}

	wantValues := []int{1, 5, 12, 33, 44, 60}
	for i, v := range wantValues {
		if values[i] != v {
			t.Fatalf("values = %v, want %v", values, wantValues)
		}
	}

	if canonical != "01 05 12 33 44 60" {
		t.Errorf("canonical = %q, want %q", canonical, "01 05 12 33 44 60")
	}
}

func TestParsePickErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"too few", "1 2 3 4 5", ErrPickCount},
		{"too many", "1 2 3 4 5 6 7", ErrPickCount},
		{"empty", "", ErrPickCount},
		{"non-numeric", "1 2 3 4 5 x", ErrPickNotNumber},
		{"below range", "0 2 3 4 5 6", ErrPickRange},
		{"above range", "1 2 3 4 5 61", ErrPickRange},
		{"duplicate", "1 2 3 4 5 5", ErrPickDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParsePick(tt.input, 6, 1, 60)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParsePick(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// genDistinctPick generates slices of 6 distinct values in [1, 60]
func genDistinctPick() gopter.Gen {
	return gen.Int64Range(0, 1<<62).Map(func(seed int64) []int {
		r := rand.New(rand.NewSource(seed))
		perm := r.Perm(60)
		values := make([]int, 6)
		for i := 0; i < 6; i++ {
			values[i] = perm[i] + 1
		}
		return values
	})
}

func formatPick(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func TestParsePickOrderInvariance(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("any ordering of the same values yields the same canonical form", prop.ForAll(
		func(values []int, seed int64) bool {
			_, canonical1, err := ParsePick(formatPick(values), 6, 1, 60)
			if err != nil {
				t.Logf("ParsePick failed on %v: %v", values, err)
				return false
			}

			r := rand.New(rand.NewSource(seed))
			shuffled := make([]int, len(values))
			copy(shuffled, values)
			r.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})

			_, canonical2, err := ParsePick(formatPick(shuffled), 6, 1, 60)
			if err != nil {
				t.Logf("ParsePick failed on shuffled %v: %v", shuffled, err)
				return false
			}

			return canonical1 == canonical2
		},
		genDistinctPick(),
		gen.Int64(),
	))

	properties.Property("canonical form is sorted, zero-padded and space-joined", prop.ForAll(
		func(values []int) bool {
			sorted, canonical, err := ParsePick(formatPick(values), 6, 1, 60)
			if err != nil {
				return false
			}

			for i := 1; i < len(sorted); i++ {
				if sorted[i-1] >= sorted[i] {
					return false
				}
			}

			parts := strings.Split(canonical, " ")
			if len(parts) != 6 {
				return false
			}
			for i, p := range parts {
				if len(p) != 2 {
					return false
				}
				n, err := strconv.Atoi(p)
				if err != nil || n != sorted[i] {
					return false
				}
			}

			return true
		},
		genDistinctPick(),
	))

	properties.Property("repeating any value is rejected", prop.ForAll(
		func(values []int) bool {
			dup := make([]int, len(values))
			copy(dup, values)
			dup[len(dup)-1] = dup[0]

			_, _, err := ParsePick(formatPick(dup), 6, 1, 60)
			return errors.Is(err, ErrPickDuplicate)
		},
		genDistinctPick(),
	))

	properties.TestingRun(t)
}
