// Package response defines the uniform envelope every handler returns,
// success or failure, across all API lines.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the wire shape of every handler result. StatusCode is set
// exactly once per request; IsSuccess=true implies ErrorMessages is empty,
// and Result and ErrorMessages are never both populated.
type Envelope struct {
	StatusCode    int      `json:"statusCode"`
	IsSuccess     bool     `json:"isSuccess"`
	Result        any      `json:"result,omitempty"`
	ErrorMessages []string `json:"errorMessages,omitempty"`
}

// Success renders a success envelope with the given payload.
func Success(c echo.Context, status int, result any) error {
	return c.JSON(status, Envelope{
		StatusCode: status,
		IsSuccess:  true,
		Result:     result,
	})
}

// NoContent renders the success envelope used by delete and update routes:
// the transport status stays 200 so the envelope body is delivered, while the
// envelope itself reports 204.
func NoContent(c echo.Context) error {
	return c.JSON(http.StatusOK, Envelope{
		StatusCode: http.StatusNoContent,
		IsSuccess:  true,
	})
}

// Failure renders a failure envelope carrying one or more error messages.
func Failure(c echo.Context, status int, messages ...string) error {
	return c.JSON(status, Envelope{
		StatusCode:    status,
		IsSuccess:     false,
		ErrorMessages: messages,
	})
}

// FailureDetail renders a failure envelope whose Result carries a named-key
// validation detail, e.g. {"duplicate_name": "villa name already exists"}.
func FailureDetail(c echo.Context, status int, detail map[string]string) error {
	return c.JSON(status, Envelope{
		StatusCode: status,
		IsSuccess:  false,
		Result:     detail,
	})
}

// NotFound renders the not-found envelope. Per the error taxonomy the error
// list stays empty.
func NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, Envelope{
		StatusCode: http.StatusNotFound,
		IsSuccess:  false,
	})
}

// BadRequest renders a validation failure, used among others for malformed
// ids rejected before any storage access.
func BadRequest(c echo.Context, messages ...string) error {
	return Failure(c, http.StatusBadRequest, messages...)
}
