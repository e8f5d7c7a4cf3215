// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "AE"

var (
	e164Pattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	separators  = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "", "\t", "", "\u00a0", "")
)

// NormalizeE164 strips separators, rewrites a leading "00" to "+" and formats
// the number as E.164 when libphonenumber recognizes it. Unrecognized numbers
// are returned in their cleaned form so IsValidE164 can judge them.
func NormalizeE164(input string) string {
	cleaned := separators.Replace(strings.TrimSpace(input))
	if cleaned == "" {
		return cleaned
	}
	if strings.HasPrefix(cleaned, "00") {
		cleaned = "+" + strings.TrimPrefix(cleaned, "00")
	}

	number, err := phonenumbers.Parse(cleaned, defaultRegion)
	if err != nil {
		return cleaned
	}

	if !phonenumbers.IsValidNumber(number) {
		return cleaned
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// IsValidE164 reports whether s is an optional "+" followed by 8 to 15 digits.
func IsValidE164(s string) bool {
	return e164Pattern.MatchString(s)
}
