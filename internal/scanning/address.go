package scanning

import "strings"

const (
	fareMarker        = "₹"
	disclaimerPrefix  = "this document"
	addressTerminator = "india"
)

type addressState int

const (
	betweenAddresses addressState = iota
	accumulating
)

// addressScanner rebuilds multi-line addresses. A block is closed by a line
// ending in "India"; the scan ends at the disclaimer.
type addressScanner struct {
	state     addressState
	current   []string
	completed []string
}

// feed consumes one line and reports whether scanning should continue
func (a *addressScanner) feed(line string) bool {
	lower := strings.ToLower(line)
	if strings.HasPrefix(lower, disclaimerPrefix) {
		return false
	}

	if a.state == betweenAddresses {
		a.current = a.current[:0]
		a.state = accumulating
	}
	a.current = append(a.current, line)

	if strings.HasSuffix(lower, addressTerminator) {
		a.completed = append(a.completed, strings.Join(a.current, " "))
		a.current = nil
		a.state = betweenAddresses
	}
	return true
}

// extractAddresses returns pickup and drop, taken from the address blocks
// following the fare line. Unterminated trailing lines are dropped.
func extractAddresses(lines []string) (pickup, drop string) {
	fareIndex := -1
	for i, line := range lines {
		if strings.Contains(line, fareMarker) {
			fareIndex = i
			break
		}
	}
	if fareIndex == -1 {
		return "", ""
	}

	var scanner addressScanner
	for _, line := range lines[fareIndex+1:] {
		if !scanner.feed(strings.TrimSpace(line)) {
			break
		}
	}

	if len(scanner.completed) >= 1 {
		pickup = scanner.completed[0]
	}
	if len(scanner.completed) >= 2 {
		drop = scanner.completed[1]
	}
	return pickup, drop
}
