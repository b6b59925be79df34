package extract

import (
	"regexp"
	"slices"
)

var (
	traceRe = regexp.MustCompile(` TRACE     : (\d+)`)

	// A success response code line immediately followed by a withdrawal
	// transaction type line.
	successWithdrawalRe = regexp.MustCompile(
		` RESP CODE : 00[ \t]*\r*\n TRN TYPE  : (?:CASH WITHDRAWAL|FAST CASH)`,
	)

	digitsRe = regexp.MustCompile(`^\d+$`)
)

// ValidTrace reports whether trace is a non-empty string of digits.
func ValidTrace(trace string) bool {
	return digitsRe.MatchString(trace)
}

// Traces returns every trace token in text, in order of appearance. Each
// token is the full run of digits after the trace label.
func Traces(text string) []string {
	ms := traceRe.FindAllStringSubmatch(text, -1)
	if len(ms) == 0 {
		return nil
	}
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m[1]
	}
	return out
}

// IsSuccessWithdrawal reports whether text records a successful cash
// withdrawal.
func IsSuccessWithdrawal(text string) bool {
	return successWithdrawalRe.MatchString(text)
}

// Matcher classifies sessions against one trace number.
type Matcher struct {
	Trace string
}

// IsTarget reports whether text carries the matcher's trace as a whole
// token: "123" does not match "1234".
func (m Matcher) IsTarget(text string) bool {
	return m.Trace != "" && slices.Contains(Traces(text), m.Trace)
}

// Classify fills the predicate fields of s.
func (m Matcher) Classify(s Session) Session {
	s.Traces = Traces(s.Text)
	s.IsTarget = m.Trace != "" && slices.Contains(s.Traces, m.Trace)
	s.IsSuccessWithdrawal = IsSuccessWithdrawal(s.Text)
	return s
}
