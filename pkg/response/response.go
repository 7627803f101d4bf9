// Package response defines the JSON envelope returned by the HTTP API.
package response

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Stable error codes.
const (
	CodeEmptyRequestBody   = "EMPTY_REQUEST_BODY"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeRouteNotFound      = "ROUTE_NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInternalError      = "INTERNAL_ERROR"
)

var EmptyRequestBodyResponse = ErrorResponse(
	http.StatusBadRequest,
	CodeEmptyRequestBody,
	"Request body is empty. Please provide necessary data.",
)

var InvalidRequestBodyResponse = ErrorResponse(
	http.StatusBadRequest,
	CodeInvalidRequestBody,
	"Request body is not valid JSON.",
)

var RouteNotFoundResponse = ErrorResponse(
	http.StatusNotFound,
	CodeRouteNotFound,
	"The requested resource was not found.",
)

var MethodNotAllowedResponse = ErrorResponse(
	http.StatusMethodNotAllowed,
	CodeMethodNotAllowed,
	"The requested method is not allowed for this resource.",
)

var ServerErrorResponse = ErrorResponse(
	http.StatusInternalServerError,
	CodeInternalError,
	"An unexpected error occurred. Please try again later.",
)

type Response struct {
	Status    string            `json:"status"`
	Error     string            `json:"error,omitempty"`
	Code      string            `json:"code,omitempty"`
	Message   string            `json:"message"`
	RequestID string            `json:"request_id,omitempty"`
	Details   []validationError `json:"details,omitempty"`
	Data      any               `json:"data,omitempty"`
}

// WithRequestID returns a copy of the response carrying the correlation id.
func (r Response) WithRequestID(id string) Response {
	r.RequestID = id
	return r
}

func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

// ErrorResponse builds an error envelope whose error title is the status text.
func ErrorResponse(statusCode int, code, msg string) Response {
	return Response{
		Status:  StatusError,
		Error:   http.StatusText(statusCode),
		Code:    code,
		Message: msg,
	}
}

type validationError struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Issue string `json:"issue"`
}

// ValidationErrorResponse builds a 400 envelope listing every field that
// failed validation.
func ValidationErrorResponse(code, msg string, err error) Response {
	resp := ErrorResponse(http.StatusBadRequest, code, msg)
	resp.Details = getValidationErrors(err)
	return resp
}

func issueForTag(tag string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "url", "http_url":
		return "Invalid url."
	default:
		return "Invalid value."
	}
}

func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field: e.Field(),
				Value: e.Value(),
				Issue: issueForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}
