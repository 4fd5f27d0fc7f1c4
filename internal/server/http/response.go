// Package httpserver exposes the journal engine over a JSON API.
package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quotidianapp/quotidian/internal/errs"
)

// envelope is the uniform response structure.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusOK, envelope{Code: 0, Message: "success", Data: data})
}

func respondErr(ctx *gin.Context, status, code int, message string) {
	ctx.JSON(status, envelope{Code: code, Message: message})
}

// respondMapped translates sentinel and validation errors into stable
// envelope codes. Raw store errors never cross this boundary.
func respondMapped(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		respondErr(ctx, http.StatusUnauthorized, 40100, "unauthorized")
	case errors.Is(err, errs.ErrNotFound):
		respondErr(ctx, http.StatusNotFound, 40400, "not found")
	case errors.Is(err, errs.ErrAlreadyExists):
		respondErr(ctx, http.StatusConflict, 40900, "already exists")
	case errors.Is(err, errs.ErrWindowClosed):
		respondErr(ctx, http.StatusConflict, 40901, "answer window closed")
	case errors.Is(err, errs.ErrInsufficientBalance):
		respondErr(ctx, http.StatusConflict, 40902, "no jokers left")
	case errors.Is(err, errs.ErrValidation):
		respondErr(ctx, http.StatusBadRequest, 40000, strings.TrimSpace(strings.TrimPrefix(err.Error(), "validation:")))
	default:
		respondErr(ctx, http.StatusInternalServerError, 50000, "could not save or load, try again")
	}
}
