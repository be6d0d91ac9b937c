package core

// error_messages.go maps technical errors to user-friendly messages with
// codes for support reference.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - No tables: No table was found in the document
//	          Action: Check that the file holds a text layer or a readable scan
//	          Matches: extract.ErrNoTables, "no tables found"
//
//	FILE002 - Unsupported: The file type is not supported
//	          Action: Upload a PDF, image (PNG, JPEG, TIFF) or CSV file
//	          Matches: extract.ErrUnsupported, "unsupported file format"
//
//	FILE003 - Extraction failed: The document could not be read
//	          Action: The file may be damaged or encrypted
//	          Matches: ErrExtractFailed
//
//	FILE004 - Write failed: The spreadsheet could not be written
//	          Action: Check free disk space and permissions of the output folder
//	          Matches: ErrWriteFailed
//
//	FILE005 - File too large: File exceeds the maximum upload size
//	          Action: Split the document into smaller files
//	          Matches: ErrFileTooLarge, "request body too large"
//
//	FILE006 - No file: No file was provided
//	          Action: Attach the document as the "file" form field
//	          Matches: ErrNoFile
//
//	FILE007 - OCR disabled: Scanned images need OCR support
//	          Action: Use a build with OCR enabled or convert the scan to PDF text
//	          Matches: ocr.ErrOCRNotEnabled
//
// # Conversion Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many conversions in progress
//	UPL004 - Request cancelled: context.Canceled
//	UPL005 - Request timeout: context.DeadlineExceeded
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid request body: malformed JSON
//	VAL002 - Invalid option: unknown output format or layout
//	VAL003 - Invalid ID: malformed run ID
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests from one client
//
// # History Errors (DB001-DB099)
//
//	DB001 - Run not found
//	DB002 - Connection refused
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// # Matching
//
// Sentinel targets are checked with errors.Is, then text patterns are
// matched case-insensitively with strings.Contains. The first match wins, so
// more specific entries come before general ones.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/pdftables/internal/extract"
	"github.com/JonMunkholm/pdftables/internal/ocr"
)

// Errors raised by the pipeline and its callers.
var (
	ErrExtractFailed = errors.New("extraction failed")
	ErrWriteFailed   = errors.New("write failed")
	ErrFileTooLarge  = errors.New("file too large")
	ErrNoFile        = errors.New("no file provided")
	ErrInvalidBody   = errors.New("invalid request body")
	ErrInvalidOption = errors.New("invalid option")
	ErrInvalidID     = errors.New("invalid id")
	ErrRunNotFound   = errors.New("run not found")
	ErrRateLimited   = errors.New("rate limit exceeded")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern maps a sentinel error or a text pattern to a user message.
type errorPattern struct {
	target  error
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Cancellation (UPL004-UPL005)
	// Checked first: a timed out extraction is also a failed extraction.
	// =========================================================================
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Conversion timed out",
			Action:  "Try a smaller document or raise the file timeout",
			Code:    "UPL005",
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Conversion was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE007)
	// =========================================================================
	{
		target: ocr.ErrOCRNotEnabled,
		msg: UserMessage{
			Message: "Scanned images need OCR support",
			Action:  "Use a build with OCR enabled or convert the scan to PDF text",
			Code:    "FILE007",
		},
	},
	{
		target:  extract.ErrNoTables,
		pattern: "no tables found",
		msg: UserMessage{
			Message: "No table was found in the document",
			Action:  "Check that the file holds a text layer or a readable scan",
			Code:    "FILE001",
		},
	},
	{
		target:  extract.ErrUnsupported,
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "The file type is not supported",
			Action:  "Upload a PDF, image (PNG, JPEG, TIFF) or CSV file",
			Code:    "FILE002",
		},
	},
	{
		target: ErrExtractFailed,
		msg: UserMessage{
			Message: "The document could not be read",
			Action:  "The file may be damaged or encrypted",
			Code:    "FILE003",
		},
	},
	{
		target: ErrWriteFailed,
		msg: UserMessage{
			Message: "The spreadsheet could not be written",
			Action:  "Check free disk space and permissions of the output folder",
			Code:    "FILE004",
		},
	},
	{
		target:  ErrFileTooLarge,
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the document into smaller files",
			Code:    "FILE005",
		},
	},
	{
		target: ErrNoFile,
		msg: UserMessage{
			Message: "No file was provided",
			Action:  `Attach the document as the "file" form field`,
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Conversion Errors (UPL002)
	// =========================================================================
	{
		target: ErrTooManyConversions,
		msg: UserMessage{
			Message: "System is busy processing other conversions",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL003)
	// =========================================================================
	{
		target: ErrInvalidBody,
		msg: UserMessage{
			Message: "Invalid request body",
			Action:  "Send a JSON body as documented",
			Code:    "VAL001",
		},
	},
	{
		target: ErrInvalidOption,
		msg: UserMessage{
			Message: "Invalid output option",
			Action:  "Use format xlsx or csv and layout combined or per-table",
			Code:    "VAL002",
		},
	},
	{
		target: ErrInvalidID,
		msg: UserMessage{
			Message: "Invalid run ID",
			Action:  "Use the ID returned by the run list",
			Code:    "VAL003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		target:  ErrRateLimited,
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Wait a minute before sending more requests",
			Code:    "RATE001",
		},
	},

	// =========================================================================
	// History Errors (DB001-DB002)
	// =========================================================================
	{
		target: ErrRunNotFound,
		msg: UserMessage{
			Message: "Run not found",
			Action:  "Verify the run ID is correct",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If nothing matches, a generic fallback message with code ERR000 is returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("report.pdf: %w", extract.ErrNoTables))
//	// msg.Code == "FILE001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ep := range errorPatterns {
		if ep.target != nil && errors.Is(err, ep.target) {
			return ep.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if ep.pattern != "" && strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// Code returns the support code of err, or "" for a nil error.
func Code(err error) string {
	return MapError(err).Code
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known entry rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps a technical error to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
