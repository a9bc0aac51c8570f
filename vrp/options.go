package vrp

// EngineOptions configures engine tuning knobs. Use DefaultOptions for
// the documented defaults.
type EngineOptions struct {
	// RegretCoefficient (ρ) weights the job-addition regret heuristic:
	// score(j) = second_best(j) - ρ*best(j). Caller-configurable in
	// [0,1], default 1.
	RegretCoefficient float64

	// RefinerMinRouteLength is the minimum route length (stops, not
	// counting start/end) at which the TSP refinement side-step is
	// attempted after a route grows by >= 2 stops. Exposed here so
	// tests can exercise refinement on shorter fixtures without waiting
	// for larger instances.
	RefinerMinRouteLength int

	// LogHook, if non-nil, is invoked after every accepted operator
	// application.
	LogHook LogHook
}

// EngineOption mutates an EngineOptions during construction.
type EngineOption func(*EngineOptions)

// WithRegretCoefficient overrides the default regret coefficient ρ.
func WithRegretCoefficient(rho float64) EngineOption {
	return func(o *EngineOptions) { o.RegretCoefficient = rho }
}

// WithRefinerMinRouteLength overrides the minimum route length eligible
// for TSP refinement.
func WithRefinerMinRouteLength(n int) EngineOption {
	return func(o *EngineOptions) { o.RefinerMinRouteLength = n }
}

// WithLogHook installs a callback invoked after every accepted operator
// application. See NewLogrusHook to adapt this onto a *logrus.Logger.
func WithLogHook(hook LogHook) EngineOption {
	return func(o *EngineOptions) { o.LogHook = hook }
}

// DefaultOptions returns the documented defaults: ρ=1,
// RefinerMinRouteLength=4, no log hook.
func DefaultOptions() EngineOptions {
	return EngineOptions{
		RegretCoefficient:     1.0,
		RefinerMinRouteLength: 4,
		LogHook:               nil,
	}
}
