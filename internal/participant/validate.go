package participant

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AllowedEmailDomains is the fixed set of email domains accepted at
// registration. Matching is case-insensitive on the domain part.
var AllowedEmailDomains = []string{"gmail.com", "outlook.com", "yahoo.com", "hotmail.com"}

var basicEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps a submission field name to a human-readable message.
// An empty map means the submission passed every rule.
type FieldErrors map[string]string

// Validate checks a raw submission against every field rule and returns the
// complete set of failures in one pass. It never short-circuits: clients
// render all field errors at once.
func Validate(sub Submission) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(sub.FullName) == "" {
		errs["fullName"] = "Full name is required."
	}

	if !validEmail(sub.Email) {
		errs["email"] = fmt.Sprintf(
			"Valid email is required (allowed domains: %s).",
			strings.Join(AllowedEmailDomains, ", "))
	}

	if !validPhone(sub.Phone) {
		errs["phone"] = "Valid phone is required with country code (e.g. +91...), 10-15 digits, digits only after '+'."
	}

	role := Role(sub.Role)
	if role != RoleStudent && role != RoleWorkingProfessional {
		errs["role"] = "Role is required and must be either 'Student' or 'Working Professional'."
	}

	if role == RoleWorkingProfessional {
		if strings.TrimSpace(sub.CompanyName) == "" {
			errs["companyName"] = "Company name is required for working professionals."
		}
		if years, ok := ParseIntField(sub.YearsOfExperience); !ok || years < 0 || years > 50 {
			errs["yearsOfExperience"] = "Years of experience must be between 0 and 50."
		}
	}

	if role == RoleStudent {
		if strings.TrimSpace(sub.Department) == "" {
			errs["department"] = "Department is required for students."
		}
		if year, ok := ParseIntField(sub.CurrentYear); !ok || year < 1 || year > 6 {
			errs["currentYear"] = "Current year must be between 1 and 6."
		}
	}

	return errs
}

func validEmail(email string) bool {
	trimmed := strings.TrimSpace(email)
	if !basicEmailPattern.MatchString(trimmed) {
		return false
	}
	domain := strings.ToLower(trimmed[strings.LastIndexByte(trimmed, '@')+1:])
	for _, allowed := range AllowedEmailDomains {
		if domain == allowed {
			return true
		}
	}
	return false
}

func validPhone(phone string) bool {
	trimmed := strings.TrimSpace(phone)
	if !strings.HasPrefix(trimmed, "+") {
		return false
	}
	digits := trimmed[1:]
	if len(digits) < 10 || len(digits) > 15 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseIntField accepts the loose encodings a form submits: a JSON number, a
// numeric string, or a json.Number. Fractional values are rejected.
func ParseIntField(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
