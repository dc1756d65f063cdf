// Package logger is the process-wide logging facade. Components log
// through package-level functions; main wires one or more backends at
// startup. Before Init is called every log call is a no-op, which keeps
// library tests silent.
package logger

type level int

const (
	levelLog level = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
	levelFatal
)

// Backend is a logging sink. Message plus alternating key/value pairs.
type Backend interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

var backends []Backend

// Init installs the global logging backends. Call once at startup.
func Init(b ...Backend) {
	backends = b
}

func emit(lvl level, message string, keyvals ...any) {
	for _, b := range backends {
		switch lvl {
		case levelDebug:
			b.Debug(message, keyvals...)
		case levelInfo:
			b.Info(message, keyvals...)
		case levelWarn:
			b.Warn(message, keyvals...)
		case levelError:
			b.Error(message, keyvals...)
		case levelFatal:
			b.Fatal(message, keyvals...)
		default:
			b.Log(message, keyvals...)
		}
	}
}

// Log writes at the default level.
func Log(message string, keyvals ...any) { emit(levelLog, message, keyvals...) }

// Debug writes at DEBUG level.
func Debug(message string, keyvals ...any) { emit(levelDebug, message, keyvals...) }

// Info writes at INFO level.
func Info(message string, keyvals ...any) { emit(levelInfo, message, keyvals...) }

// Warn writes at WARN level.
func Warn(message string, keyvals ...any) { emit(levelWarn, message, keyvals...) }

// Error writes at ERROR level.
func Error(message string, keyvals ...any) { emit(levelError, message, keyvals...) }

// Fatal writes at FATAL level; the backend terminates the program.
func Fatal(message string, keyvals ...any) { emit(levelFatal, message, keyvals...) }
