// Package extract splits a stream of journal lines into transaction
// sessions, classifies each one and selects the window of successful cash
// withdrawals surrounding a target trace number.
package extract

import "strings"

// Separator is the line that delimits transactions in a journal.
var Separator = strings.Repeat("*", 55)

// Session is one transaction record: the lines between two separators.
type Session struct {
	// Index is the 0-based position of the session in the scanned stream.
	Index int
	// Text holds the record's lines joined by "\n". Never empty.
	Text string
	// Complete is true when separators were seen on both sides of the
	// record. Records cut by the start or end of the supplied input are
	// incomplete because they may continue in a file that was not given.
	Complete bool

	Traces              []string
	IsTarget            bool
	IsSuccessWithdrawal bool
}
