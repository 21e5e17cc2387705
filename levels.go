package mongolog

import "fmt"

// Level represents the severity of a log record. Levels are ordered:
// LevelDebug < LevelInfo < LevelWarning < LevelError < LevelCritical.
type Level int8

const (
	// LevelDebug for detailed diagnostic output
	LevelDebug Level = iota
	// LevelInfo for general informational messages
	LevelInfo
	// LevelWarning for warning conditions
	LevelWarning
	// LevelError for error conditions
	LevelError
	// LevelCritical for failures requiring immediate attention
	LevelCritical
)

// String returns the canonical name of the level. These names appear in the
// "level" field of stored documents and are part of the schema contract.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a canonical level name back into a Level.
func ParseLevel(name string) (Level, error) {
	switch name {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	default:
		return LevelDebug, fmt.Errorf("unknown level %q", name)
	}
}
