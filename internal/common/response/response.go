// Package response writes the {"status","message","data"} envelope every
// endpoint answers with.
package response

import (
	"github.com/labstack/echo/v4"
)

type Envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func JSON(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{Status: status, Message: message, Data: data})
}

// Error writes an envelope with null data.
func Error(c echo.Context, status int, message string) error {
	return JSON(c, status, message, nil)
}
