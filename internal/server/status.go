package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sealmit/asig/pkg/types"
)

// statusFor maps a typed service error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrAlreadyExists),
		errors.Is(err, types.ErrIDMismatch),
		errors.Is(err, types.ErrBadReference),
		errors.Is(err, types.ErrDuplicateTrace),
		errors.Is(err, types.ErrPolicyViolation),
		errors.Is(err, types.ErrMalformedEntity),
		errors.Is(err, types.ErrEmptyCommitMessage),
		errors.Is(err, types.ErrNothingToCommit):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error as a JSON body with the mapped status.
func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"detail": err.Error()})
}
