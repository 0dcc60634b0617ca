package scanning

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// rideTimeLayout is the layout of the normalized date token, e.g. "Jan 5 2024, 9:41 PM"
const rideTimeLayout = "Jan 2 2006, 3:04 PM"

var (
	rideTimePattern = regexp.MustCompile(`([A-Za-z]+) (\d{1,2})(?:st|nd|rd|th)? (\d{4}), (\d{1,2}:\d{2}) ([APMapm]{2})`)
	rideIDPattern   = regexp.MustCompile(`RD\d+`)
	platePattern    = regexp.MustCompile(`[A-Z]{2}[0-9]{2}[A-Z]{1,2}[0-9]{4}`)
	nonAlnum        = regexp.MustCompile(`[^A-Za-z0-9]`)
	farePattern     = regexp.MustCompile(`₹\s*([\d,]+)`)
)

// ReceiptText is the text of one document as both raw text and trimmed lines
type ReceiptText struct {
	Full  string
	Lines []string
}

// NewReceiptText splits raw text into its non-empty trimmed lines
func NewReceiptText(raw string) ReceiptText {
	text := ReceiptText{Full: raw}
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			text.Lines = append(text.Lines, line)
		}
	}
	return text
}

// ParseReceipt extracts receipt fields from text. Fields that cannot be found
// are left at their zero value; parsing never fails.
func ParseReceipt(text ReceiptText) *ReceiptData {
	pickup, drop := extractAddresses(text.Lines)

	return &ReceiptData{
		RideTime:     extractRideTime(text.Full),
		RideID:       extractRideID(text.Full),
		VehiclePlate: extractVehiclePlate(text.Lines),
		Pickup:       pickup,
		Drop:         drop,
		Fare:         extractFare(text.Full),
	}
}

// extractRideTime finds the first "Mon 2nd 2006, 3:04 PM" style token
func extractRideTime(text string) *time.Time {
	m := rideTimePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	month, ok := monthAbbrev(m[1])
	if !ok {
		return nil
	}
	normalized := month + " " + m[2] + " " + m[3] + ", " + m[4] + " " + strings.ToUpper(m[5])

	t, err := time.Parse(rideTimeLayout, normalized)
	if err != nil {
		return nil
	}
	return &t
}

// monthAbbrev maps a month name or any abbreviation of at least three letters
// ("Sep", "Sept", "September") to the three letter form time.Parse expects
func monthAbbrev(word string) (string, bool) {
	if len(word) < 3 {
		return "", false
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if len(word) <= len(name) && strings.EqualFold(word, name[:len(word)]) {
			return name[:3], true
		}
	}
	return "", false
}

func extractRideID(text string) string {
	return rideIDPattern.FindString(text)
}

// extractVehiclePlate returns the first registration plate found on any line.
// Punctuation and spacing are dropped before matching since plates are often
// rendered as "KA-01 AB 1234".
func extractVehiclePlate(lines []string) string {
	for _, line := range lines {
		cleaned := strings.ToUpper(nonAlnum.ReplaceAllString(line, ""))
		if plate := platePattern.FindString(cleaned); plate != "" {
			return plate
		}
	}
	return ""
}

func extractFare(text string) float64 {
	m := farePattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	fare, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || fare < 0 {
		return 0
	}
	return fare
}
