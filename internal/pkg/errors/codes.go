package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrTooManyRequests = 1003
	ErrBadRequest      = 1004
	ErrServiceUnavail  = 1005

	// Search errors (2000-2999)
	ErrSourceUnknown     = 2000
	ErrSourceFetchFailed = 2001
	ErrSourceTimeout     = 2002
	ErrEmptyQuery        = 2003

	// Delivery errors (3000-3999)
	ErrInvalidPincode       = 3000
	ErrPincodeLookupFailed  = 3001
	ErrSourceNotDeliverable = 3002

	// Feedback errors (4000-4999)
	ErrFeedbackInvalidItem      = 4000
	ErrFeedbackInvalidQuery     = 4001
	ErrFeedbackInvalidVerdict   = 4002
	ErrFeedbackInvalidTimestamp = 4003
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Search errors
	ErrSourceUnknown:     {ErrSourceUnknown, http.StatusNotFound, "Unknown source"},
	ErrSourceFetchFailed: {ErrSourceFetchFailed, http.StatusBadGateway, "Source fetch failed"},
	ErrSourceTimeout:     {ErrSourceTimeout, http.StatusGatewayTimeout, "Source fetch timed out"},
	ErrEmptyQuery:        {ErrEmptyQuery, http.StatusBadRequest, "Search query is empty"},

	// Delivery errors
	ErrInvalidPincode:       {ErrInvalidPincode, http.StatusBadRequest, "Invalid PIN code"},
	ErrPincodeLookupFailed:  {ErrPincodeLookupFailed, http.StatusBadGateway, "PIN code lookup failed"},
	ErrSourceNotDeliverable: {ErrSourceNotDeliverable, http.StatusOK, "Source does not deliver to this location"},

	// Feedback errors
	ErrFeedbackInvalidItem:      {ErrFeedbackInvalidItem, http.StatusBadRequest, "Feedback item id is missing or invalid"},
	ErrFeedbackInvalidQuery:     {ErrFeedbackInvalidQuery, http.StatusBadRequest, "Feedback query id is missing or invalid"},
	ErrFeedbackInvalidVerdict:   {ErrFeedbackInvalidVerdict, http.StatusBadRequest, "Feedback verdict must be 'relevant' or 'not_relevant'"},
	ErrFeedbackInvalidTimestamp: {ErrFeedbackInvalidTimestamp, http.StatusBadRequest, "Feedback timestamp must not be negative"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
