package core

// # Error Codes Reference
//
// Technical errors are mapped to short user messages with a code that can be
// quoted in bug reports. Patterns are matched case-insensitively with
// strings.Contains and the first match wins.
//
//	FILE001 - Input not found             "no such file", "does not exist"
//	FILE002 - Permission denied           "permission denied"
//	FILE003 - Path is a directory         "is a directory"
//	FILE004 - File too large              "request body too large", "file too large"
//	FILE005 - Empty file                  "empty file"
//	FILE006 - No file                     "no file provided"
//
//	ROW001 - Missing column               "missing required column"
//	ROW002 - Wrong field count            "wrong number of fields"
//	ROW003 - Invalid count                "invalid count"
//	ROW004 - Bad quoting                  "bare \"", "extraneous or missing \""
//
//	IO001 - Disk full                     "no space left"
//	IO002 - Output closed                 "broken pipe"
//
//	RUN001 - Cancelled                    "context canceled"
//	RUN002 - Timed out                    "context deadline exceeded"
//	RUN003 - Unknown rule                 "unknown rule"
//	RUN004 - Server busy                  "too many concurrent runs"
//
//	DB001 - Connection refused            "connection refused"
//	DB002 - Timeout                       "timeout"
//
//	ERR000 - Fallback

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{"no such file", UserMessage{"File not found", "Check the input path", "FILE001"}},
	{"does not exist", UserMessage{"File not found", "Check the input path", "FILE001"}},
	{"permission denied", UserMessage{"Permission denied", "Check file permissions on the input and output paths", "FILE002"}},
	{"is a directory", UserMessage{"Path is a directory", "Pass a file path, not a directory", "FILE003"}},
	{"request body too large", UserMessage{"File too large", "Split the file into smaller chunks", "FILE004"}},
	{"file too large", UserMessage{"File too large", "Split the file into smaller chunks", "FILE004"}},
	{"empty file", UserMessage{"The file is empty", "Provide a CSV with a ph,name,count header row", "FILE005"}},
	{"no file provided", UserMessage{"No file was provided", "Attach a CSV file in the \"file\" field", "FILE006"}},

	// Row errors
	{"missing required column", UserMessage{"Required column is missing from CSV", "The header must contain ph, name and count", "ROW001"}},
	{"wrong number of fields", UserMessage{"Row has the wrong number of columns", "Check the reported line for stray delimiters", "ROW002"}},
	{"invalid count", UserMessage{"Count is not a whole number between 0 and 65535", "Fix the count value on the reported line", "ROW003"}},
	{`bare "`, UserMessage{"Malformed quoting", "Quote fields containing quotes and double inner quotes", "ROW004"}},
	{`extraneous or missing "`, UserMessage{"Malformed quoting", "Quote fields containing quotes and double inner quotes", "ROW004"}},

	// Output errors
	{"no space left", UserMessage{"Disk is full", "Free space or write the output elsewhere", "IO001"}},
	{"broken pipe", UserMessage{"Output was closed early", "Check the process reading the output", "IO002"}},

	// Run errors
	{"context canceled", UserMessage{"Run was cancelled", "Start the run again when ready", "RUN001"}},
	{"context deadline exceeded", UserMessage{"Run timed out", "Try a smaller file", "RUN002"}},
	{"unknown rule", UserMessage{"Unknown validation rule", "Use --rule strict or --rule legacy", "RUN003"}},
	{"too many concurrent runs", UserMessage{"Server is busy", "Retry in a few seconds", "RUN004"}},

	// History database
	{"connection refused", UserMessage{"Unable to connect to database", "Check DATABASE_URL or unset it to skip run history", "DB001"}},
	{"timeout", UserMessage{"Operation timed out", "Please try again", "DB002"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Run again with -vvv and check the log output",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for nil.
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

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matched a specific pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
