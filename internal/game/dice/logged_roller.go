package dice

import "go.uber.org/zap"

// Roller wraps a Source and logs every draw at debug level.
// Roller itself satisfies Source, so it can be injected anywhere a Source is
// expected.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src must be non-nil. A nil logger disables logging.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Intn draws from the underlying source and logs the result.
//
// Precondition: n > 0.
// Postcondition: Returns a value in [0, n).
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice draw",
		zap.String("kind", "intn"),
		zap.Int("n", n),
		zap.Int("result", v),
	)
	return v
}

// Float64 draws from the underlying source and logs the result.
//
// Postcondition: Returns a value in [0, 1).
func (r *Roller) Float64() float64 {
	v := r.src.Float64()
	r.logger.Debug("dice draw",
		zap.String("kind", "float64"),
		zap.Float64("result", v),
	)
	return v
}
