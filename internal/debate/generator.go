// Package debate implements the opposition-preserving debate engine:
// per-turn orchestration, stance-consistent reply generation over an
// external text generator, and the deterministic fallback used when
// that generator is absent or failing.
package debate

import (
	"context"

	"github.com/szaher/kontra/internal/analysis"
	"github.com/szaher/kontra/internal/conversation"
	"github.com/szaher/kontra/internal/strategy"
)

// Stage distinguishes the position-establishing first reply from every
// later one.
type Stage int

const (
	StageFirst Stage = iota
	StageContinuing
)

// Input carries everything one reply generation needs. Stance is the
// position fixed at conversation creation and is immutable ground
// truth for every path.
type Input struct {
	Stage    Stage
	Topic    string
	Stance   string
	Strategy strategy.Strategy
	Analysis analysis.Analysis
	History  []conversation.Turn
	UserText string
}

// Generator produces one agent reply. Implementations must never
// concede the user's original position. An error from a Generator is
// recoverable: the engine falls through to the deterministic fallback.
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
}
