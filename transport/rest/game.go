package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository"
)

type gameResponse struct {
	Game  *entity.Game `json:"game,omitempty"`
	Error string       `json:"error,omitempty"`
}

type turnRequest struct {
	Cell *int `json:"cell"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (that *Server) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.session(w, r)
	that.respondGame(w, game, err)
}

func (that *Server) makeTurn(w http.ResponseWriter, r *http.Request) {
	game, err := that.session(w, r)
	if err != nil {
		that.respondGame(w, nil, err)
		return
	}

	var req turnRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		that.respondGame(w, game, fmt.Errorf("%w: cell is required", errBadRequestBody))
		return
	}

	updated, err := that.games.MakeTurn(r.Context(), game.ID, *req.Cell)
	if updated == nil {
		updated = game
	}

	that.respondGame(w, updated, err)
}

func (that *Server) resetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.session(w, r)
	if err != nil {
		that.respondGame(w, nil, err)
		return
	}

	updated, err := that.games.ResetGame(r.Context(), game.ID)
	that.respondGame(w, updated, err)
}

func (that *Server) selectMode(w http.ResponseWriter, r *http.Request) {
	game, err := that.session(w, r)
	if err != nil {
		that.respondGame(w, nil, err)
		return
	}

	var req modeRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.respondGame(w, game, fmt.Errorf("%w: %w", errBadRequestBody, err))
		return
	}

	updated, err := that.games.SelectMode(r.Context(), game.ID, req.Mode)
	if updated == nil {
		updated = game
	}

	that.respondGame(w, updated, err)
}

func (that *Server) deleteGame(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		that.respondGame(w, nil, repository.ErrGameNotFound)
		return
	}

	if err = that.games.DeleteGame(r.Context(), cookie.Value); err != nil {
		that.respondGame(w, nil, err)
		return
	}

	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := that.games.Stats(r.Context())
	if err != nil {
		that.respondError(w, err)
		return
	}

	that.renderJSON(w, http.StatusOK, stats)
}

// respondGame writes the game, and on error the mapped status with the game as it stands.
func (that *Server) respondGame(w http.ResponseWriter, game *entity.Game, err error) {
	if err == nil {
		that.renderJSON(w, http.StatusOK, gameResponse{Game: game})
		return
	}

	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Errorw("request failed", "error", err)
	}

	that.renderJSON(w, status, gameResponse{Game: game, Error: message})
}

func (that *Server) respondError(w http.ResponseWriter, err error) {
	that.respondGame(w, nil, err)
}

func (that *Server) renderJSON(w http.ResponseWriter, status int, v any) {
	if err := that.renderer.JSON(w, status, v); err != nil {
		that.logger.Errorw("failed to render json", "error", err)
	}
}
