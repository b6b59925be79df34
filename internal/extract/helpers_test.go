package extract

import (
	"bufio"
	"strings"
)

// journal builds journal text with a separator before, between and after
// every record.
func journal(records ...string) string {
	var sb strings.Builder
	sb.WriteString(Separator + "\n")
	for _, r := range records {
		sb.WriteString(r + "\n")
		sb.WriteString(Separator + "\n")
	}
	return sb.String()
}

func linesOf(text string) *bufio.Scanner {
	return bufio.NewScanner(strings.NewReader(text))
}

func withdrawal(trace string) string {
	return " TRACE     : " + trace + "\n RESP CODE : 00\n TRN TYPE  : CASH WITHDRAWAL\n AMOUNT    : 100.00"
}

func fastCash(trace string) string {
	return " TRACE     : " + trace + "\n RESP CODE : 00\n TRN TYPE  : FAST CASH"
}

func inquiry(trace string) string {
	return " TRACE     : " + trace + "\n RESP CODE : 00\n TRN TYPE  : BALANCE INQUIRY"
}

func declined(trace string) string {
	return " TRACE     : " + trace + "\n RESP CODE : 51\n TRN TYPE  : CASH WITHDRAWAL"
}
