// Package handlers implements the HTTP endpoints over the application
// services.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/coscheck/coscheck/pkg/errors"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// respondError maps an application error onto an HTTP status and a stable
// error envelope.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.JSON(errors.HTTPStatus(code), errorResponse{
		Error: errorBody{Code: code.String(), Message: err.Error()},
	})
}

// badRequest reports a malformed request body.
func badRequest(c *gin.Context, msg string) {
	respondError(c, errors.InvalidParam(msg))
}
