package rest

import (
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository"
)

var errBadRequestBody = errors.New("malformed request body")

// statusFor maps a use case error to the HTTP status and the message safe to show.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrAIThinking),
		errors.Is(err, apperror.ErrNotYourTurn):
		return http.StatusConflict, rootMessage(err)
	case errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrInvalidMode),
		errors.Is(err, errBadRequestBody):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, repository.ErrGameNotFound):
		return http.StatusNotFound, repository.ErrGameNotFound.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func rootMessage(err error) string {
	for _, sentinel := range []error{
		apperror.ErrCellOccupied,
		apperror.ErrGameFinished,
		apperror.ErrAIThinking,
		apperror.ErrNotYourTurn,
		apperror.ErrInvalidCell,
		apperror.ErrInvalidMode,
		errBadRequestBody,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}

	return err.Error()
}
