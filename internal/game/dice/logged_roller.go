package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged damage rolls.
// All rolls are logged at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll samples a percentage in [MinRoll, MaxRoll] and logs it.
//
// Postcondition: result logged; returns a value in [MinRoll, MaxRoll].
func (r *Roller) Roll() int {
	roll := MinRoll + r.src.Intn(MaxRoll-MinRoll+1)
	r.logger.Debug("damage roll",
		zap.Int("roll", roll),
		zap.Int("min", MinRoll),
		zap.Int("max", MaxRoll),
	)
	return roll
}
