package vrp

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LogEvent is the structured record emitted after every accepted
// operator application. The engine owns only the fields; the caller
// decides the sink, level, and formatting.
type LogEvent struct {
	// RunID correlates every event from one Engine.Run call.
	RunID string

	// Operator names the accepted move, e.g. "relocate", "2-opt".
	Operator string

	// Iteration is the outer loop counter at the time of acceptance.
	Iteration int

	// Gain is the cost improvement the accepted move produced.
	Gain float64

	// Indicators is the solution-quality tuple immediately after
	// applying the move.
	Indicators Indicators

	// AdditionCandidates lists the vehicles the accepted move touched,
	// i.e. the ones the next job-addition pass most needs to revisit.
	AdditionCandidates []int
}

// LogHook receives one LogEvent per accepted move. Installed via
// WithLogHook; nil by default, in which case the engine emits nothing.
type LogHook func(LogEvent)

// NewLogrusHook adapts a LogEvent onto logger as a structured entry,
// routing engine-internal diagnostics through logrus rather than
// fmt.Printf. The caller retains full control of logger's level,
// formatter, and output.
func NewLogrusHook(logger *logrus.Logger) LogHook {
	return func(ev LogEvent) {
		logger.WithFields(logrus.Fields{
			"run_id":        ev.RunID,
			"operator":      ev.Operator,
			"iteration":     ev.Iteration,
			"gain":          ev.Gain,
			"unassigned":    ev.Indicators.Unassigned,
			"cost":          ev.Indicators.Cost,
			"used_vehicles": ev.Indicators.UsedVehicles,
			"addition_candidates": ev.AdditionCandidates,
		}).Debug("vrp: move accepted")
	}
}

// newRunID generates a fresh correlation id for one Engine.Run call.
func newRunID() string {
	return uuid.New().String()
}
