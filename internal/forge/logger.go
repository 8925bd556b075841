package forge

// Logger receives debug-level diagnostics from forge backends, such as
// whether a token was attached to a request. Token values themselves
// are never passed to a Logger. Callers plug in their own
// implementation; the default logs nothing.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
}

// noopLogger is the default Logger used when none is provided.
type noopLogger struct{}

func (noopLogger) Debug(msg string, keysAndValues ...interface{}) {}

func loggerOrNoop(l Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return l
}
