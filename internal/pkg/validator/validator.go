package validator

import (
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

var nonDigitRegex = regexp.MustCompile(`\D`)

// CleanDigits strips everything except digits.
func CleanDigits(s string) string {
	return nonDigitRegex.ReplaceAllString(s, "")
}

// IsValidBSB checks an Australian bank-state-branch number: exactly 6 digits
// after stripping separators.
func IsValidBSB(bsb string) bool {
	return len(CleanDigits(bsb)) == 6
}

// IsValidBankAccount checks an Australian account number: 1 to 9 digits.
func IsValidBankAccount(account string) bool {
	digits := CleanDigits(account)
	return len(digits) >= 1 && len(digits) <= 9
}

// FormatBSB renders six BSB digits as NNN-NNN.
func FormatBSB(digits string) string {
	if len(digits) != 6 {
		return digits
	}
	return digits[:3] + "-" + digits[3:]
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}
