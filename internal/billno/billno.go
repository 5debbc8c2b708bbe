// Package billno derives invoice identifiers of the form SPS01, SPS02, ...
package billno

import (
	"math/big"
	"strings"

	"github.com/spsworld03/sps-bill-brew/internal/domain"
)

const (
	Prefix   = "SPS"
	minWidth = 2
)

// Next returns the number that follows the last record in insertion order.
// It does not look at earlier records: a ledger that is out of numeric order
// yields whatever follows its last entry.
func Next(records []domain.BillRecord) string {
	if len(records) == 0 {
		return Format(big.NewInt(1))
	}
	return Increment(records[len(records)-1].BillNumber)
}

// Increment parses the first digit run of billNo, adds one and formats the
// result. A number without digits counts as zero.
func Increment(billNo string) string {
	n := new(big.Int)
	if run, ok := DigitRun(billNo); ok {
		n.SetString(run, 10)
	}
	return Format(n.Add(n, big.NewInt(1)))
}

// Format renders n with the prefix, zero-padded to at least two digits.
func Format(n *big.Int) string {
	digits := n.String()
	if len(digits) < minWidth {
		digits = strings.Repeat("0", minWidth-len(digits)) + digits
	}
	return Prefix + digits
}

// DigitRun returns the first contiguous run of ASCII decimal digits in s.
func DigitRun(s string) (string, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		isDigit := s[i] >= '0' && s[i] <= '9'
		if isDigit && start < 0 {
			start = i
		}
		if !isDigit && start >= 0 {
			return s[start:i], true
		}
	}
	if start < 0 {
		return "", false
	}
	return s[start:], true
}
