// Package oracle talks to the external alignment oracle that scores proofs for the
// bio consensus engine.
package oracle

import "context"

const (
	OpBuild  = "build"
	OpBase   = "base"
	OpWidths = "widths"
	OpAlign  = "align"
	OpScore  = "score"
)

// Oracle is the query surface of an alignment oracle. Every call is blocking.
type Oracle interface {
	// Base returns the reference score an alignment is measured against.
	Base(ctx context.Context) (int64, error)
	// Widths lists the candidate alignment widths in the order the oracle reports them.
	Widths(ctx context.Context) ([]int, error)
	// Align produces the alignment text for one width.
	Align(ctx context.Context, width int) (string, error)
	// Score rates an alignment produced by Align.
	Score(ctx context.Context, alignment string) (int64, error)
}

// Builder is implemented by oracles that need a build step before their first query.
type Builder interface {
	Build(ctx context.Context) error
}
