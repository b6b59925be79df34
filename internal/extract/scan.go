package extract

import (
	"context"
	"errors"
	"fmt"
)

// DefaultWindowSize is the number of successful withdrawals kept on each
// side of the target when the caller does not choose one.
const DefaultWindowSize = 3

var (
	ErrInvalidTrace  = errors.New("trace number must be a non-empty string of digits")
	ErrInvalidWindow = errors.New("window size must not be negative")
)

// ScanForTrace splits lines into sessions and selects n successful cash
// withdrawals before and after the first session carrying trace. Input is
// consumed only until the window is full.
//
// NotFound and insufficient context are reported through the Result. An
// error is returned only for invalid arguments, a failing line source or a
// cancelled ctx.
func ScanForTrace(ctx context.Context, lines Lines, trace string, n int) (Result, error) {
	if !ValidTrace(trace) {
		return Result{}, ErrInvalidTrace
	}
	if n < 0 {
		return Result{}, ErrInvalidWindow
	}

	m := Matcher{Trace: trace}
	sp := NewSplitter(lines)
	sel := NewSelector(n)
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		s, ok := sp.Next()
		if !ok {
			break
		}
		if sel.Push(m.Classify(s)) {
			break
		}
	}
	if err := sp.Err(); err != nil {
		return Result{}, fmt.Errorf("scanning for trace %s: %w", trace, err)
	}
	return sel.Finish(), nil
}
