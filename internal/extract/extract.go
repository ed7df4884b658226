// Package extract recognizes shipment identifiers in raw email text.
//
// Every field is recognized by an ordered list of patterns tried
// first-to-last: explicit-label patterns come before bare fallbacks,
// because a bare digit run in a marketing footer is much more likely
// to be noise than text sitting right after "collection code".
package extract

import (
	"regexp"
	"strings"
)

// Facts holds the structured fields recognized in one email body.
// An empty string means the field was not found; extraction never fails.
type Facts struct {
	TrackingNumber string
	PickupCode     string
	DropoffCode    string
	Location       string
	RecipientName  string
}

// HasCode reports whether at least one actionable code was found.
func (f Facts) HasCode() bool {
	return f.PickupCode != "" || f.DropoffCode != ""
}

// Tracking number schemes after whitespace stripping: the UK-style
// prefix scheme and the EU-style long digit scheme.
var (
	ukTrackingScheme = regexp.MustCompile(`^[A-Z]{2,3}\d{12,21}$`)
	euTrackingScheme = regexp.MustCompile(`^[A-Z0-9]{20,24}$`)
)

// trackingPatterns capture a loose candidate that is canonicalized and
// validated against the known schemes before it is accepted.
var trackingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)parcel\s+no\.?\s*:?\s*([A-Za-z]{2,3}\s?[\d ]{12,26})`),
	regexp.MustCompile(`(?i)parcel\s+number\s*:?\s*([A-Za-z]{2,3}\s?[\d ]{12,26})`),
	regexp.MustCompile(`(?i)tracking\s+number\s*:?\s*([A-Za-z]{2,3}\s?[\d ]{12,26})`),
	regexp.MustCompile(`(?i)parcel\s+no\.?\s*:?\s*([A-Za-z0-9]{20,24})\b`),
	regexp.MustCompile(`(?i)parcel\s+number\s*:?\s*([A-Za-z0-9]{20,24})\b`),
	regexp.MustCompile(`(?i)tracking\s+number\s*:?\s*([A-Za-z0-9]{20,24})\b`),
	// tracking page links carry the number as the last path segment or
	// as a query parameter
	regexp.MustCompile(`(?i)inpost[^\s"'<>]*?[/=]([A-Za-z]{2,3}\d{12,21})\b`),
	regexp.MustCompile(`(?i)inpost[^\s"'<>]*?[/=]([A-Za-z0-9]{20,24})\b`),
	// bare fallbacks; risk matching incidental numbers, so they come last
	regexp.MustCompile(`\b([A-Z]{2,3}\d{12,21})\b`),
	regexp.MustCompile(`\b([A-Z0-9]{20,24})\b`),
}

// pickupPatterns recognize the 6-digit collection code. The trailing
// bare pattern accepts any 6-digit run; that over-matching is a known
// tradeoff kept from the original heuristics, not an oversight.
var pickupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)collection\s+code\s*:?\s*(\d{6})\b`),
	regexp.MustCompile(`(?i)pick[\s-]?up\s+code\s*:?\s*(\d{6})\b`),
	regexp.MustCompile(`(?i)your\s+code\s*:?\s*(\d{6})\b`),
	regexp.MustCompile(`(?i)kod\s+odbioru\s*:?\s*(\d{6})\b`),
	regexp.MustCompile(`\b(\d{6})\b`),
}

// dropoffPatterns recognize the 9-digit send code, usually rendered in
// groups of three. Some notification templates glue the code straight
// onto the label text, so the label patterns allow zero whitespace.
var dropoffPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)this\s+code\s+instead\s*:?\s*(\d{3}\s?\d{3}\s?\d{3})\b`),
	regexp.MustCompile(`(?i)send\s+code\s*:?\s*(\d{3}\s?\d{3}\s?\d{3})\b`),
	regexp.MustCompile(`(?i)drop[\s-]?off\s+code\s*:?\s*(\d{3}\s?\d{3}\s?\d{3})\b`),
	regexp.MustCompile(`(?i)kod\s+nadania\s*:?\s*(\d{3}\s?\d{3}\s?\d{3})\b`),
	regexp.MustCompile(`\b(\d{3} \d{3} \d{3})\b`),
}

// locationPatterns prefer shop-style descriptions over short locker
// codes. Shop descriptions must stop at the next section label so the
// opening hours block does not get swallowed into the location.
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)InPost\s+shop\s*-\s*([^\n]+?)(?:\s+(?:Opening|Open|Recipient|Godziny)\b|\s*\n|\s*$)`),
	regexp.MustCompile(`(?i)(?:locker|paczkomat)\s*:?\s*([A-Z0-9]{5,10})\b`),
	regexp.MustCompile(`\b([A-Z]{3}\d{2,3}[A-Z]?)\b`),
}

// recipientPattern requires at least two capitalized words after the
// label; a single stray capitalized word is too weak a signal.
var recipientPattern = regexp.MustCompile(`\b(?:TO|To):\s*(\p{Lu}\p{L}+(?:\s+\p{Lu}\p{L}+)+)`)

// Extract runs every field recognizer over the combined plain-text and
// HTML-derived bodies of one message.
func Extract(text string) Facts {
	return Facts{
		TrackingNumber: TrackingNumber(text),
		PickupCode:     PickupCode(text),
		DropoffCode:    DropoffCode(text),
		Location:       Location(text),
		RecipientName:  RecipientName(text),
	}
}

// TrackingNumber returns the first candidate that canonicalizes into a
// valid UK-style or EU-style tracking number, uppercased with internal
// whitespace stripped.
func TrackingNumber(text string) string {
	for _, re := range trackingPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := canonicalizeTracking(m[1])
			if ukTrackingScheme.MatchString(candidate) || euTrackingScheme.MatchString(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// PickupCode returns the 6-digit collection code, or empty if none found.
func PickupCode(text string) string {
	return firstMatch(pickupPatterns, text)
}

// DropoffCode returns the 9-digit send code with grouping spaces removed,
// or empty if none found.
func DropoffCode(text string) string {
	return stripSpaces(firstMatch(dropoffPatterns, text))
}

// Location returns the locker or shop description, or empty if none found.
func Location(text string) string {
	return strings.TrimSpace(firstMatch(locationPatterns, text))
}

// RecipientName returns the addressee from a "TO: First Last" line,
// or empty if none found.
func RecipientName(text string) string {
	if m := recipientPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// firstMatch returns the first capture of the first pattern that matches
func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func canonicalizeTracking(s string) string {
	return strings.ToUpper(stripSpaces(s))
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
