// Package analyzertest provides in-process fakes for batch.Analyzer,
// letting Worker/Controller tests exercise retry and failure paths
// without a network call, the same role the teacher's
// fakeBulkImporter plays for ImportWorker's tests.
package analyzertest

import (
	"context"

	"github.com/mohammadpnp/resumebatch/internal/domain/batch"
)

// Fixed always returns the same outcome.
type Fixed struct {
	Result  []byte
	Class   batch.ErrorClass
	Message string
	Err     error
}

func (f Fixed) Analyze(_ context.Context, _, _ string) ([]byte, batch.ErrorClass, string, error) {
	return f.Result, f.Class, f.Message, f.Err
}

// Outcome is one scripted return value for Sequence.
type Outcome struct {
	Result  []byte
	Class   batch.ErrorClass
	Message string
	Err     error
}

// Sequence returns its scripted Outcomes in order, one per call, then
// repeats the last outcome for any call beyond the script's length.
type Sequence struct {
	Outcomes []Outcome
	calls    int
}

func (s *Sequence) Analyze(_ context.Context, _, _ string) ([]byte, batch.ErrorClass, string, error) {
	idx := s.calls
	if idx >= len(s.Outcomes) {
		idx = len(s.Outcomes) - 1
	}
	s.calls++
	o := s.Outcomes[idx]
	return o.Result, o.Class, o.Message, o.Err
}

// Calls reports how many times Analyze has been invoked.
func (s *Sequence) Calls() int {
	return s.calls
}
