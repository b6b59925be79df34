package extract

import "slices"

// State is the phase of a Selector.
type State int

const (
	Scanning State = iota
	TargetFound
	Done
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case TargetFound:
		return "target_found"
	case Done:
		return "done"
	}
	return "unknown"
}

// Outcome is the terminal result of a scan.
type Outcome int

const (
	NotFound Outcome = iota
	FoundComplete
	FoundInsufficient
)

func (o Outcome) String() string {
	switch o {
	case NotFound:
		return "not_found"
	case FoundComplete:
		return "found_complete"
	case FoundInsufficient:
		return "found_insufficient"
	}
	return "unknown"
}

// Result is the window selected around a target.
type Result struct {
	Outcome    Outcome
	WindowSize int
	// Sessions is the retained window in stream order. Nil for NotFound.
	Sessions []Session
	// TargetIndex is the target's position in Sessions, -1 for NotFound.
	TargetIndex int

	SuccessesBefore int
	SuccessesAfter  int
	BeforeDeficit   int
	AfterDeficit    int
	// BeforeOpen and AfterOpen are set when the first or last retained
	// session was cut by the edge of the input.
	BeforeOpen bool
	AfterOpen  bool
}

// Found reports whether the target trace was seen.
func (r Result) Found() bool {
	return r.Outcome != NotFound
}

// InsufficientBefore reports missing history before the target.
func (r Result) InsufficientBefore() bool {
	return r.Found() && (r.BeforeDeficit > 0 || r.BeforeOpen)
}

// InsufficientAfter reports missing context after the target.
func (r Result) InsufficientAfter() bool {
	return r.Found() && (r.AfterDeficit > 0 || r.AfterOpen)
}

// Target returns the target session. It panics for NotFound results.
func (r Result) Target() Session {
	return r.Sessions[r.TargetIndex]
}

// Selector keeps a bounded backlog of sessions while looking for the
// target, then counts successful withdrawals after it until the window is
// full. It is not safe for concurrent use; each scan owns its Selector.
type Selector struct {
	n               int
	state           State
	backlog         []Session
	target          int
	successesBefore int
	successesAfter  int
}

// NewSelector returns a Selector that retains n successful withdrawals on
// each side of the target.
func NewSelector(n int) *Selector {
	return &Selector{n: n, target: -1}
}

// Push consumes the next classified session and reports whether the window
// is full and no further input is needed.
func (w *Selector) Push(s Session) (done bool) {
	if w.state == Done {
		return true
	}

	switch {
	case w.state == Scanning && s.IsTarget:
		// The target's own withdrawal never counts toward the after side.
		w.state = TargetFound
		w.target = len(w.backlog)
	case w.state == Scanning && s.IsSuccessWithdrawal:
		w.successesBefore++
	case w.state == TargetFound && s.IsSuccessWithdrawal:
		w.successesAfter++
	}
	w.backlog = append(w.backlog, s)

	if w.state == Scanning && w.successesBefore > w.n {
		w.trim()
	}
	if w.state == TargetFound && w.successesAfter >= w.n {
		w.state = Done
	}
	return w.state == Done
}

// trim drops sessions from the front until only n successful withdrawals
// remain before the (not yet seen) target.
func (w *Selector) trim() {
	drop := 0
	for w.successesBefore > w.n {
		if w.backlog[drop].IsSuccessWithdrawal {
			w.successesBefore--
		}
		drop++
	}
	w.backlog = slices.Delete(w.backlog, 0, drop)
}

// State returns the current phase.
func (w *Selector) State() State { return w.state }

// SuccessesBefore returns the withdrawals retained before the target.
func (w *Selector) SuccessesBefore() int { return w.successesBefore }

// SuccessesAfter returns the withdrawals seen after the target.
func (w *Selector) SuccessesAfter() int { return w.successesAfter }

// Backlog returns the sessions currently retained. The slice is owned by
// the Selector and must not be modified.
func (w *Selector) Backlog() []Session { return w.backlog }

// Finish ends the scan, either because Push reported done or because the
// input ran out, and reports the outcome.
func (w *Selector) Finish() Result {
	if w.state == Scanning {
		w.backlog = nil
		w.state = Done
		return Result{Outcome: NotFound, WindowSize: w.n, TargetIndex: -1}
	}
	w.state = Done

	r := Result{
		WindowSize:      w.n,
		Sessions:        w.backlog,
		TargetIndex:     w.target,
		SuccessesBefore: w.successesBefore,
		SuccessesAfter:  w.successesAfter,
		BeforeDeficit:   max(0, w.n-w.successesBefore),
		AfterDeficit:    max(0, w.n-w.successesAfter),
		BeforeOpen:      !w.backlog[0].Complete,
		AfterOpen:       !w.backlog[len(w.backlog)-1].Complete,
	}
	r.Outcome = FoundComplete
	if r.InsufficientBefore() || r.InsufficientAfter() {
		r.Outcome = FoundInsufficient
	}
	return r
}
