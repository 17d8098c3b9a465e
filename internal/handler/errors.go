package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireside/proctor-gateway/internal/apperr"
	"github.com/hireside/proctor-gateway/internal/response"
	"github.com/hireside/proctor-gateway/internal/session"
)

// failFromErr maps the gateway error taxonomy onto HTTP responses.
func failFromErr(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrBlankAnswer, ve.Reason)
		return
	}

	var re *apperr.RemoteError
	if errors.As(err, &re) {
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrRemoteRejected, re.Message)
		return
	}

	if apperr.IsSessionLoad(err) {
		response.Fail(c, http.StatusBadGateway, response.ErrSessionLoadFailed)
		return
	}

	if errors.Is(err, apperr.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	if errors.Is(err, session.ErrSessionOpen) {
		response.Fail(c, http.StatusConflict, response.ErrSessionOpen)
		return
	}

	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
