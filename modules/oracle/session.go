package oracle

import (
	"context"
	"fmt"
)

// Session holds the values fetched from the oracle once at start-up. It is never
// modified after Initialize and may be shared without locking.
type Session struct {
	baseScore int64
	widths    []int
}

// Initialize builds the oracle when needed, then reads its base score and widths.
// Any failure is returned; there are no fallback values.
func Initialize(ctx context.Context, o Oracle) (*Session, error) {
	if b, ok := o.(Builder); ok {
		if err := b.Build(ctx); err != nil {
			return nil, fmt.Errorf("failed to build oracle: %w", err)
		}
	}

	base, err := o.Base(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read base score: %w", err)
	}

	widths, err := o.Widths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read widths: %w", err)
	}
	if len(widths) == 0 {
		return nil, &Error{Op: OpWidths, Output: "[]", Err: ErrProtocol}
	}

	return &Session{
		baseScore: base,
		widths:    append([]int(nil), widths...),
	}, nil
}

// NewSession builds a session from known values, without querying an oracle.
func NewSession(baseScore int64, widths []int) *Session {
	return &Session{
		baseScore: baseScore,
		widths:    append([]int(nil), widths...),
	}
}

func (s *Session) BaseScore() int64 {
	return s.baseScore
}

// Widths returns a copy of the candidate widths in oracle order.
func (s *Session) Widths() []int {
	return append([]int(nil), s.widths...)
}

// Threshold is the lowest score accepted with the given margin.
func (s *Session) Threshold(margin int64) int64 {
	return s.baseScore + margin
}
