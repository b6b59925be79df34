// Package report turns a scan result into a self-describing evidence
// report that can be rendered, parsed back and verified.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"

	"github.com/fakeyudi/ejtrace/internal/extract"
	"github.com/fakeyudi/ejtrace/internal/journal"
)

// Version is the report format version written by this package.
const Version = 1

// ErrDigestMismatch is returned by VerifyDigest when the report was altered
// after it was sealed.
var ErrDigestMismatch = errors.New("report digest does not match its contents")

// Report is the evidence produced for one trace on one terminal.
type Report struct {
	Version      int       `json:"version" yaml:"version"`
	ID           string    `json:"id" yaml:"id"`
	Trace        string    `json:"trace" yaml:"trace"`
	TerminalID   string    `json:"terminal_id" yaml:"terminal_id"`
	WindowSize   int       `json:"window_size" yaml:"window_size"`
	Outcome      string    `json:"outcome" yaml:"outcome"`
	Investigator string    `json:"investigator,omitempty" yaml:"investigator,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	Sources      []Source  `json:"sources" yaml:"sources"`
	Counts       Counts    `json:"counts" yaml:"counts"`
	// Hint tells the investigator which journals would complete the window.
	Hint     string    `json:"hint,omitempty" yaml:"hint,omitempty"`
	Sessions []Session `json:"sessions" yaml:"sessions"`
	Digest   string    `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// Source is a journal file that was scanned.
type Source struct {
	Path string `json:"path" yaml:"path"`
	Date string `json:"date" yaml:"date"`
}

// Counts summarises the window around the target.
type Counts struct {
	SuccessesBefore int  `json:"successes_before" yaml:"successes_before"`
	SuccessesAfter  int  `json:"successes_after" yaml:"successes_after"`
	BeforeDeficit   int  `json:"before_deficit" yaml:"before_deficit"`
	AfterDeficit    int  `json:"after_deficit" yaml:"after_deficit"`
	BeforeOpen      bool `json:"before_open" yaml:"before_open"`
	AfterOpen       bool `json:"after_open" yaml:"after_open"`
}

// Session is one transaction record in the window.
type Session struct {
	Index             int      `json:"index" yaml:"index"`
	Text              string   `json:"text" yaml:"text"`
	Complete          bool     `json:"complete" yaml:"complete"`
	Traces            []string `json:"traces,omitempty" yaml:"traces,omitempty"`
	Target            bool     `json:"target" yaml:"target"`
	SuccessWithdrawal bool     `json:"success_withdrawal" yaml:"success_withdrawal"`
}

// Options carries the report fields that do not come from the scan.
type Options struct {
	Trace        string
	Investigator string
	Now          time.Time
}

// FromResult builds an unsealed report for the scan of group.
func FromResult(group journal.Group, res extract.Result, opts Options) *Report {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	r := &Report{
		Version:      Version,
		ID:           uuid.New().String(),
		Trace:        opts.Trace,
		TerminalID:   group.TerminalID,
		WindowSize:   res.WindowSize,
		Outcome:      res.Outcome.String(),
		Investigator: opts.Investigator,
		CreatedAt:    now.UTC().Truncate(time.Second),
		Sources:      make([]Source, 0, len(group.Files)),
		Counts: Counts{
			SuccessesBefore: res.SuccessesBefore,
			SuccessesAfter:  res.SuccessesAfter,
			BeforeDeficit:   res.BeforeDeficit,
			AfterDeficit:    res.AfterDeficit,
			BeforeOpen:      res.BeforeOpen,
			AfterOpen:       res.AfterOpen,
		},
		Sessions: make([]Session, 0, len(res.Sessions)),
	}
	for _, f := range group.Files {
		r.Sources = append(r.Sources, Source{Path: f.Path, Date: f.DateString()})
	}
	for i, s := range res.Sessions {
		r.Sessions = append(r.Sessions, Session{
			Index:             s.Index,
			Text:              s.Text,
			Complete:          s.Complete,
			Traces:            s.Traces,
			Target:            i == res.TargetIndex,
			SuccessWithdrawal: s.IsSuccessWithdrawal,
		})
	}
	if res.Found() {
		r.Hint = group.Remediation(res.InsufficientBefore(), res.InsufficientAfter())
	}
	return r
}

// Found reports whether the trace was located.
func (r *Report) Found() bool {
	return r.Outcome != extract.NotFound.String()
}

// TargetSession returns the target session, or false if there is none.
func (r *Report) TargetSession() (Session, bool) {
	for _, s := range r.Sessions {
		if s.Target {
			return s, true
		}
	}
	return Session{}, false
}

// ComputeDigest returns the sha256 hex digest of the RFC 8785 canonical JSON
// of r with its Digest field cleared.
func (r *Report) ComputeDigest() (string, error) {
	c := *r
	c.Digest = ""
	raw, err := json.Marshal(&c)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize report: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Seal stores the digest of the report's current contents.
func (r *Report) Seal() error {
	d, err := r.ComputeDigest()
	if err != nil {
		return err
	}
	r.Digest = d
	return nil
}

// VerifyDigest recomputes the digest and compares it with the stored one.
func (r *Report) VerifyDigest() error {
	if r.Digest == "" {
		return fmt.Errorf("%w: report is not sealed", ErrDigestMismatch)
	}
	d, err := r.ComputeDigest()
	if err != nil {
		return err
	}
	if d != r.Digest {
		return fmt.Errorf("%w: stored %s, computed %s", ErrDigestMismatch, r.Digest, d)
	}
	return nil
}
