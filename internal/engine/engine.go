// Package engine computes recommended stock transfers between channels and
// warehouses so that every warehouse's main sales channel is lifted back
// towards its standard stock level. Two strategies exist: a greedy
// shortage-first allocator and a fair-share allocator that equalizes
// stock-to-standard ratios via bisection.
//
// The engine is pure: it performs no I/O, owns no shared state, and may run
// concurrently for independent inputs.
package engine

import (
	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/shopspring/decimal"
)

// Config exposes the numeric iteration bounds of the fair-share bisection.
// They are part of the behavioral contract: changing them changes edge-case
// results, so tests may tighten them deliberately.
type Config struct {
	// MaxDoubleSteps caps the upper-bound expansion doublings.
	MaxDoubleSteps int
	// MaxBisectSteps caps the bisection iterations.
	MaxBisectSteps int
	// Quant is the convergence tolerance on the fill ratio.
	Quant decimal.Decimal
	// LambdaCeiling stops the expansion once the ratio is absurdly large.
	LambdaCeiling decimal.Decimal
}

// DefaultConfig returns the production iteration bounds.
func DefaultConfig() Config {
	return Config{
		MaxDoubleSteps: 32,
		MaxBisectSteps: 60,
		Quant:          decimal.New(1, -6),
		LambdaCeiling:  decimal.NewFromInt(1000),
	}
}

// Engine runs the reallocation strategies.
type Engine struct {
	cfg Config
}

func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

func NewWithConfig(cfg Config) *Engine {
	if cfg.MaxDoubleSteps <= 0 {
		cfg.MaxDoubleSteps = DefaultConfig().MaxDoubleSteps
	}
	if cfg.MaxBisectSteps <= 0 {
		cfg.MaxBisectSteps = DefaultConfig().MaxBisectSteps
	}
	if cfg.Quant.Sign() <= 0 {
		cfg.Quant = DefaultConfig().Quant
	}
	if cfg.LambdaCeiling.Sign() <= 0 {
		cfg.LambdaCeiling = DefaultConfig().LambdaCeiling
	}
	return &Engine{cfg: cfg}
}

// RecommendPlanLines computes recommended moves for the given aggregated
// matrix rows. mainChannels maps each warehouse to its designated main sales
// channel; warehouses without an entry are never shortage targets but may
// still donate. The stored gap on each row is ignored: shortages and
// surpluses are recomputed from the policy's deficit basis at evaluation
// time.
func (e *Engine) RecommendPlanLines(
	rows []domain.MatrixRow,
	mainChannels map[string]string,
	policy domain.ReallocationPolicy,
) []domain.RecommendedMove {
	moves := []domain.RecommendedMove{}
	for _, group := range buildArena(rows, policy.DeficitBasis) {
		if policy.FairShareMode == domain.FairShareOff {
			moves = append(moves, e.allocateGreedy(group, mainChannels, policy)...)
		} else {
			moves = append(moves, e.allocateFairShare(group, mainChannels, policy)...)
		}
	}
	return moves
}

// RecommendPlanLines runs the engine with default configuration.
func RecommendPlanLines(
	rows []domain.MatrixRow,
	mainChannels map[string]string,
	policy domain.ReallocationPolicy,
) []domain.RecommendedMove {
	return New().RecommendPlanLines(rows, mainChannels, policy)
}
