package csvparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	isoDatePattern = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	usDatePattern  = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	currencyCodes  = regexp.MustCompile(`(?i)(CAD|USD|EUR|GBP|AUD)`)
	currencySigns  = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", " ", "")
)

// ParseDate accepts YYYY-MM-DD anywhere in s, or M/D/YYYY, and returns the
// date as YYYY-MM-DD. The result is always a real calendar date.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	var candidate string
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		candidate = fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
	} else if m := usDatePattern.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		candidate = fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
	} else {
		return "", false
	}

	if _, err := time.Parse(dateLayout, candidate); err != nil {
		return "", false
	}
	return candidate, true
}

// ParseAmount strips currency symbols, thousands separators and currency
// codes before parsing s as a decimal. An amount in parentheses is negative.
// Spaces inside the number are not accepted.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = currencySigns.Replace(s)
	s = strings.TrimSpace(currencyCodes.ReplaceAllString(s, ""))

	negate := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negate = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" || strings.ContainsAny(s, " \t") {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negate {
		d = d.Abs().Neg()
	}
	return d, true
}

var refundWords = []string{"return", "refund", "reimbursement"}

// SignAmount applies the ledger sign convention: everything is an outflow
// except a positive amount whose memo names a refund.
func SignAmount(amount decimal.Decimal, memo string) decimal.Decimal {
	if amount.IsPositive() && isRefund(memo) {
		return amount
	}
	return amount.Abs().Neg()
}

func isRefund(memo string) bool {
	lower := strings.ToLower(memo)
	for _, w := range refundWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
