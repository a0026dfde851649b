package tasks

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"
)

// logLevel controls coordinator log verbosity, set via BREWSTY_LOG_LEVEL.
type logLevel int

const (
	logNone logLevel = iota
	logError
	logWarn
	logInfo
	logDebug
	logTrace
)

func (l logLevel) String() string {
	switch l {
	case logError:
		return "error"
	case logWarn:
		return "warn"
	case logInfo:
		return "info"
	case logDebug:
		return "debug"
	case logTrace:
		return "trace"
	default:
		return "none"
	}
}

func parseLogLevel(raw string) logLevel {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "none", "off", "0":
		return logNone
	case "error", "err", "1":
		return logError
	case "warn", "warning", "2":
		return logWarn
	case "info", "3":
		return logInfo
	case "debug", "4":
		return logDebug
	case "trace", "5":
		return logTrace
	default:
		return logWarn
	}
}

// eventLog emits one JSON object per event through the standard logger.
type eventLog struct {
	component string
	level     logLevel
}

func newEventLog(component string) *eventLog {
	return &eventLog{
		component: component,
		level:     parseLogLevel(os.Getenv("BREWSTY_LOG_LEVEL")),
	}
}

func (e *eventLog) enabled(level logLevel) bool {
	return e != nil && e.level != logNone && level <= e.level
}

func (e *eventLog) event(level logLevel, event string, fields map[string]any) {
	if !e.enabled(level) {
		return
	}
	payload := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level.String(),
		"component": e.component,
		"event":     event,
	}
	for k, v := range fields {
		payload[k] = v
	}
	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("%s: failed to marshal log event %s: %v", e.component, event, err)
		return
	}
	log.Printf("%s", b)
}
