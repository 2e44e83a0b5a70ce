package jsonpatch

import "go.uber.org/zap"

// config holds the knobs a Differ runs with.
type config struct {
	// collapse single-element relocations into move operations
	moves bool
	log   *zap.Logger
	// when non-nil, populated by every top-level diff
	stats *Stats
}

func defaultConfig() *config {
	return &config{
		moves: true,
		log:   zap.NewNop(),
	}
}

// Option adjusts a Differ's configuration. Zero or more Options can be passed
// to New, NewDiffer or DiffArrays.
type Option func(cfg *config)

// WithMoves toggles move detection. When enabled (the default), an array
// element that is removed and re-added elsewhere with an equal value becomes
// one move, as long as no other removed or added element sits between the two
// positions. An object key whose value reappears unchanged under a new
// sibling key also becomes a move.
func WithMoves(enabled bool) Option {
	return func(cfg *config) {
		cfg.moves = enabled
	}
}

// WithLogger wires a logger into the differ. A nil logger is ignored.
func WithLogger(log *zap.Logger) Option {
	return func(cfg *config) {
		if log != nil {
			cfg.log = log
		}
	}
}

// WithStats will reset and populate st every time Diff, DiffArrays or New
// computes a diff.
func WithStats(st *Stats) Option {
	return func(cfg *config) {
		cfg.stats = st
	}
}
