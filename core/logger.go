package core

// Logger is implemented by services/logger. Error and Fatal take extra args
// (an error, a map of extras, or a Session identifying the actor) that
// reporting backends may forward.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
