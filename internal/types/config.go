package types

type RunMode string

// Seat events travel over an in-process pubsub, so every mode runs the API
// server and the event consumer together.
const (
	// ModeLocal adds development logging and gin debug output
	ModeLocal RunMode = "local"
	ModeAPI   RunMode = "api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)
