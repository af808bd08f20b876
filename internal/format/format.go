package format

import (
	"strings"
	"time"
)

// RupeeSign prefixes every rendered plan price.
const RupeeSign = "₹"

// FmtPrice renders a plan price as received from the product API, which may
// be a number or free text. Numeric values get Indian digit grouping:
// FmtPrice("125000") => "₹1,25,000". Anything else is shown verbatim after
// the sign. An empty price renders as "".
func FmtPrice(price string) string {
	price = strings.TrimSpace(price)
	if price == "" {
		return ""
	}
	if strings.HasPrefix(price, RupeeSign) {
		price = strings.TrimSpace(strings.TrimPrefix(price, RupeeSign))
	}
	if grouped, ok := groupNumber(price); ok {
		return RupeeSign + grouped
	}
	return RupeeSign + price
}

// groupNumber applies en-IN grouping (last three digits, then pairs) to the
// integer part of a plain decimal number.
func groupNumber(s string) (string, bool) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if intPart == "" || !allDigits(intPart) || (hasFrac && (frac == "" || !allDigits(frac))) {
		return "", false
	}
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if len(intPart) <= 3 {
		b.WriteString(intPart)
	} else {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		first := len(head) % 2
		if first > 0 {
			b.WriteString(head[:first])
		}
		for i := first; i < len(head); i += 2 {
			if b.Len() > 0 && !(neg && b.Len() == 1) {
				b.WriteByte(',')
			}
			b.WriteString(head[i : i+2])
		}
		b.WriteByte(',')
		b.WriteString(tail)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String(), true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FmtDate formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "hi", "ta":
		return t.Format("02-01-2006")
	default:
		return t.Format("Jan 2, 2006")
	}
}
