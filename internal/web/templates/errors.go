package templates

import (
	"github.com/a-h/templ"

	"github.com/JonMunkholm/PoleMap/internal/core"
)

// Alert levels.
const (
	AlertError   = "error"
	AlertWarning = "warning"
)

// ErrorAlert renders an inline error box.
func ErrorAlert(message, action, code string) templ.Component {
	return alertBox(AlertError, core.UserMessage{Message: message, Action: action, Code: code})
}

// Alert renders msg at the given level. A zero message renders nothing.
func Alert(level string, msg *core.UserMessage) templ.Component {
	if msg == nil || msg.Message == "" {
		return templ.NopComponent
	}
	return alertBox(level, *msg)
}

func alertLevel(level string) string {
	if level == "" {
		return AlertError
	}
	return level
}
