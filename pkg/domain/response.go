package domain

import (
	"errors"
)

// ResponseKind discriminates the three response shapes.
type ResponseKind string

const (
	ResponseRender   ResponseKind = "render"
	ResponseRedirect ResponseKind = "redirect"
	ResponseError    ResponseKind = "error"
)

// ErrorCode classifies error responses for transports.
type ErrorCode string

const (
	CodeProtocol      ErrorCode = "protocol"
	CodeExpired       ErrorCode = "expired"
	CodeInvalidAction ErrorCode = "invalid_action"
	CodeCallback      ErrorCode = "callback"
	CodeNotFound      ErrorCode = "not_found"
	CodeUnavailable   ErrorCode = "unavailable"
	CodeInternal      ErrorCode = "internal"
)

// ErrorDetail is the structured part of an error response.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Restart asks the transport to offer a link that starts a fresh session.
	Restart bool `json:"restart,omitempty"`
}

// Response is what the core hands back to a transport.
type Response struct {
	Kind        ResponseKind
	ContentType string
	Body        []byte

	// SessionID and PageID identify the rendered page, or the redirect target.
	SessionID string
	PageID    string

	Error *ErrorDetail
}

// Redirect builds a response pointing the client at a page.
func Redirect(sessionID, pageID string) Response {
	return Response{
		Kind:      ResponseRedirect,
		SessionID: sessionID,
		PageID:    pageID,
	}
}

// Render builds a response carrying a rendered body.
func Render(sessionID, pageID, contentType string, body []byte) Response {
	return Response{
		Kind:        ResponseRender,
		ContentType: contentType,
		Body:        body,
		SessionID:   sessionID,
		PageID:      pageID,
	}
}

// ErrorResponse classifies err into a structured error response.
func ErrorResponse(err error) Response {
	detail := &ErrorDetail{Code: Classify(err), Message: err.Error()}
	if detail.Code == CodeExpired {
		detail.Restart = true
	}
	return Response{Kind: ResponseError, Error: detail}
}

// Classify maps an error onto the response code taxonomy.
func Classify(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrSessionExpired), errors.Is(err, ErrPageExpired):
		return CodeExpired
	case errors.Is(err, ErrProtocol):
		return CodeProtocol
	case errors.Is(err, ErrInvalidAction):
		return CodeInvalidAction
	case errors.Is(err, ErrCallbackFailed), errors.Is(err, ErrCallCycle):
		return CodeCallback
	case errors.Is(err, ErrUnknownResource):
		return CodeNotFound
	case errors.Is(err, ErrUnavailable):
		return CodeUnavailable
	}
	return CodeInternal
}

// IsError reports whether the response is an error response.
func (r Response) IsError() bool {
	return r.Kind == ResponseError
}
