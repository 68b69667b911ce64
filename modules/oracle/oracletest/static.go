// Package oracletest provides an in-process Oracle for tests.
package oracletest

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/polarysfoundation/polarys-bio/modules/oracle"
)

// Static answers from fixed tables and records every call it receives.
// Alignments default to "aln-<width>"; scores default to zero.
type Static struct {
	BaseScore  int64
	WidthList  []int
	Alignments map[int]string
	Scores     map[string]int64

	// AlignErr and ScoreErr, when set, are returned for the matching input.
	AlignErr map[int]error
	ScoreErr map[string]error

	mu    sync.Mutex
	calls []Call
}

type Call struct {
	Op  string
	Arg string
}

func (s *Static) record(op, arg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: op, Arg: arg})
}

func (s *Static) Base(ctx context.Context) (int64, error) {
	s.record(oracle.OpBase, "")
	return s.BaseScore, nil
}

func (s *Static) Widths(ctx context.Context) ([]int, error) {
	s.record(oracle.OpWidths, "")
	return append([]int(nil), s.WidthList...), nil
}

func (s *Static) Align(ctx context.Context, width int) (string, error) {
	s.record(oracle.OpAlign, strconv.Itoa(width))
	if err := s.AlignErr[width]; err != nil {
		return "", err
	}
	if aln, ok := s.Alignments[width]; ok {
		return aln, nil
	}
	return AlignmentFor(width), nil
}

func (s *Static) Score(ctx context.Context, alignment string) (int64, error) {
	s.record(oracle.OpScore, alignment)
	if err := s.ScoreErr[alignment]; err != nil {
		return 0, err
	}
	return s.Scores[alignment], nil
}

// Calls returns a copy of the recorded calls.
func (s *Static) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsOf returns the arguments of the recorded calls to op, in order.
func (s *Static) CallsOf(op string) []string {
	var args []string
	for _, c := range s.Calls() {
		if c.Op == op {
			args = append(args, c.Arg)
		}
	}
	return args
}

func (s *Static) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// AlignmentFor is the default alignment text for width.
func AlignmentFor(width int) string {
	return fmt.Sprintf("aln-%d", width)
}
