package partner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/erp/retail/internal/domain/shared"
)

var (
	phonePattern = regexp.MustCompile(`^\+7\d{10}$`)
	// Domain labels are non-empty, so "a@.ru" and "a@mail..ru" are rejected here.
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)
)

// ValidatePhone reports whether s is empty or a Russian mobile number written as
// "+7" followed by exactly 10 digits, without separators.
func ValidatePhone(s string) bool {
	return s == "" || phonePattern.MatchString(s)
}

// ValidateEmail reports whether s is empty or a local@domain.tld address with a
// TLD of two or more letters and no empty dot-separated segments.
func ValidateEmail(s string) bool {
	if s == "" {
		return true
	}
	if !emailPattern.MatchString(s) {
		return false
	}
	local := s[:strings.IndexByte(s, '@')]
	return !strings.Contains(local, "..") &&
		!strings.HasPrefix(local, ".") &&
		!strings.HasSuffix(local, ".")
}

func validatePhone(phone string) error {
	if !ValidatePhone(phone) {
		return shared.NewFieldError(shared.CodeInvalidPhone, "phone", phone,
			fmt.Sprintf("Invalid phone %q: expected +7 followed by 10 digits, e.g. +79991234567", phone))
	}
	return nil
}

func validateEmail(email string) error {
	if !ValidateEmail(email) {
		return shared.NewFieldError(shared.CodeInvalidEmail, "email", email,
			fmt.Sprintf("Invalid email %q", email))
	}
	return nil
}
