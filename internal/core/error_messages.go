package core

// error_messages.go maps technical errors to messages a person with a
// spreadsheet can act on. Each message carries a code so a user can quote it
// and support can find the matching log line.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	          Patterns: "file too large", "request body too large"
//	FILE002 - Unsupported format: not an .xlsx workbook or .csv file
//	          Patterns: "unsupported file format"
//	FILE003 - Unreadable workbook
//	          Patterns: "invalid workbook"
//	FILE004 - Unreadable CSV
//	          Patterns: "invalid csv"
//	FILE005 - No file selected
//	          Patterns: "no file provided"
//	FILE006 - Empty table: header found but no pole rows
//	          Patterns: "empty table"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing column: Latitud, Longitud or Numero absent
//	         Patterns: "missing required column"
//	VAL002 - Pole index out of range
//	         Patterns: "pole index out of range"
//	VAL003 - Invalid coordinate
//	         Patterns: "invalid coordinate"
//	VAL004 - Invalid map settings
//	         Patterns: "invalid settings", "invalid render configuration"
//	VAL005 - Malformed form or JSON body
//	         Patterns: "malformed request"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found or expired
//	         Patterns: "session not found"
//	SES002 - Too many open maps
//	         Patterns: "too many active sessions"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - System busy loading other files
//	         Patterns: "too many concurrent loads"
//	UPL002 - Request cancelled
//	         Patterns: "context canceled"
//	UPL003 - Request timed out
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application log for the
// technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum upload size",
			Action:  "Remove unused sheets or columns and upload again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum upload size",
			Action:  "Remove unused sheets or columns and upload again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "The file is not a spreadsheet",
			Action:  "Upload an .xlsx workbook or a .csv file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid workbook",
		msg: UserMessage{
			Message: "The workbook could not be read",
			Action:  "Open the file in a spreadsheet application and save it again as .xlsx",
			Code:    "FILE003",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The CSV file could not be read",
			Action:  "Check that quotes are balanced and save the file as UTF-8",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose a spreadsheet with the pole coordinates",
			Code:    "FILE005",
		},
	},
	{
		pattern: "empty table",
		msg: UserMessage{
			Message: "The file has a header row but no poles",
			Action:  "Add one row per pole below the Latitud, Longitud and Numero header",
			Code:    "FILE006",
		},
	},

	// Validation
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A required column is missing",
			Action:  "The first row must contain the columns Latitud, Longitud and Numero",
			Code:    "VAL001",
		},
	},
	{
		pattern: "pole index out of range",
		msg: UserMessage{
			Message: "There is no pole at that index",
			Action:  "Pick an index between 0 and the number of rows minus one",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid coordinate",
		msg: UserMessage{
			Message: "The coordinate is not a number",
			Action:  "Enter latitude and longitude in decimal degrees, for example 19.43260000",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid settings",
		msg: UserMessage{
			Message: "A map setting is out of range",
			Action:  "Icon size must be 5 to 50 px and font size 1 to 24 pt",
			Code:    "VAL004",
		},
	},
	{
		pattern: "invalid render configuration",
		msg: UserMessage{
			Message: "A map setting is out of range",
			Action:  "Icon size must be 5 to 50 px and font size 1 to 24 pt",
			Code:    "VAL004",
		},
	},
	{
		pattern: "malformed request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check that every field is filled in with a number where one is expected",
			Code:    "VAL005",
		},
	},

	// Session
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "This map is no longer available",
			Action:  "Upload the file again to open a new map",
			Code:    "SES001",
		},
	},
	{
		pattern: "too many active sessions",
		msg: UserMessage{
			Message: "Too many maps are open on the server",
			Action:  "Please wait a few minutes and try again",
			Code:    "SES002",
		},
	},

	// Upload
	{
		pattern: "too many concurrent loads",
		msg: UserMessage{
			Message: "The server is busy reading other files",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL003",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
