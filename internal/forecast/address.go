package forecast

import (
	"regexp"
	"strings"
)

const blockNumberWidth = 5

var addressPattern = regexp.MustCompile(`^(\d+)\s([^,]+),`)

// ParseBlock converts a 311 street address into a hundred-block key.
// The last two digits of the street number become "XX" and the result is
// zero-padded to five characters:
//
//	"7120 W DIVERSEY AVE, CHICAGO, IL, 60707" -> "071XX W DIVERSEY AVE"
//
// It reports false when the address has no leading number or no comma
// after the street name.
func ParseBlock(address string) (string, bool) {
	m := addressPattern.FindStringSubmatch(address)
	if m == nil {
		return "", false
	}

	number, street := m[1], m[2]
	if len(number) > 2 {
		number = number[:len(number)-2]
	} else {
		number = ""
	}
	number += "XX"
	if len(number) < blockNumberWidth {
		number = strings.Repeat("0", blockNumberWidth-len(number)) + number
	}

	return number + " " + street, true
}
