package punchgo

type options struct {
	logger  *Logger
	metrics MetricsCollector
}

// Option configures Program construction.
type Option func(*options)

// WithLogger configures the logger used by the program.
//
// If nil is passed, the default text logger is used.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NewLogger(nil)
		}
		o.logger = logger
	}
}

// WithMetrics configures the metrics collector used by the program.
//
// If nil is passed, metrics collection is disabled.
func WithMetrics(collector MetricsCollector) Option {
	return func(o *options) {
		if collector == nil {
			collector = NoopMetricsCollector{}
		}
		o.metrics = collector
	}
}
