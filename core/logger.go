package core

// Logger is any leveled logger. Implementations may inspect trailing args
// for structured payloads (errors, maps, users) before printing.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
