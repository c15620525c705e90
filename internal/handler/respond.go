package handler // handler implements the HTTP endpoints

import (
    "github.com/labstack/echo/v4"
)

// apiError is the error half of the response envelope.  Code is an
// enumerable machine-readable value; Field names the offending input
// for form validation; Details carries the full rule list where one
// message is not enough.
type apiError struct {
    Message string   `json:"message"`
    Code    string   `json:"code,omitempty"`
    Field   string   `json:"field,omitempty"`
    Details []string `json:"details,omitempty"`
}

// fail writes the {"success":false,"error":{...}} envelope.
func fail(c echo.Context, status int, code, message string) error {
    return c.JSON(status, echo.Map{
        "success": false,
        "error":   apiError{Message: message, Code: code},
    })
}

// failField is fail with the offending field named.
func failField(c echo.Context, status int, code, message, field string) error {
    return c.JSON(status, echo.Map{
        "success": false,
        "error":   apiError{Message: message, Code: code, Field: field},
    })
}

// failValidation reports the first violated rule as the message and
// the full list as details.
func failValidation(c echo.Context, status int, code string, errs []string) error {
    msg := "Validation failed"
    if len(errs) > 0 {
        msg = errs[0]
    }
    return c.JSON(status, echo.Map{
        "success": false,
        "error":   apiError{Message: msg, Code: code, Details: errs},
    })
}

// ok writes the success envelope with optional data and message.
func ok(c echo.Context, status int, data any, message string) error {
    body := echo.Map{"success": true}
    if data != nil {
        body["data"] = data
    }
    if message != "" {
        body["message"] = message
    }
    return c.JSON(status, body)
}
