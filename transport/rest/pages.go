package rest

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/unrolled/render"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/view"
)

type indexData struct {
	Model string
	Board view.Board
}

func (that *Server) indexPage(w http.ResponseWriter, r *http.Request) {
	game, err := that.session(w, r)
	if err != nil {
		that.renderPageError(w, err)
		return
	}

	that.renderHTML(w, "index", indexData{Model: that.model, Board: view.NewBoard(game)})
}

// boardFragment renders the grid alone so the page can refresh it after a push.
func (that *Server) boardFragment(w http.ResponseWriter, r *http.Request) {
	game, err := that.session(w, r)
	if err != nil {
		that.renderPageError(w, err)
		return
	}

	that.renderHTMLWith(that.fragments, w, "board", view.NewBoard(game))
}

func (that *Server) playForm(w http.ResponseWriter, r *http.Request) {
	game, err := that.session(w, r)
	if err != nil {
		that.renderPageError(w, err)
		return
	}

	cell, err := strconv.Atoi(chi.URLParam(r, "cell"))
	if err != nil {
		that.logger.Debugw("move rejected", "error", apperror.ErrInvalidCell, "game_id", game.ID)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if _, err = that.games.MakeTurn(r.Context(), game.ID, cell); err != nil {
		that.logFormError(game, err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (that *Server) resetForm(w http.ResponseWriter, r *http.Request) {
	game, err := that.session(w, r)
	if err != nil {
		that.renderPageError(w, err)
		return
	}

	if _, err = that.games.ResetGame(r.Context(), game.ID); err != nil {
		that.logFormError(game, err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (that *Server) modeForm(w http.ResponseWriter, r *http.Request) {
	game, err := that.session(w, r)
	if err != nil {
		that.renderPageError(w, err)
		return
	}

	if _, err = that.games.SelectMode(r.Context(), game.ID, chi.URLParam(r, "mode")); err != nil {
		that.logFormError(game, err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (that *Server) socket(w http.ResponseWriter, r *http.Request) {
	game, err := that.session(w, r)
	if err != nil {
		that.renderPageError(w, err)
		return
	}

	that.hub.Serve(w, r, game)
}

// logFormError keeps rejected clicks quiet; the redirect shows the unchanged board.
func (that *Server) logFormError(game *entity.Game, err error) {
	if status, _ := statusFor(err); status == http.StatusInternalServerError {
		that.logger.Errorw("form request failed", "error", err, "game_id", game.ID)
		return
	}

	that.logger.Debugw("move rejected", "error", err, "game_id", game.ID)
}

func (that *Server) renderPageError(w http.ResponseWriter, err error) {
	that.logger.Errorw("failed to resolve session", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (that *Server) renderHTML(w http.ResponseWriter, name string, data any) {
	that.renderHTMLWith(that.renderer, w, name, data)
}

func (that *Server) renderHTMLWith(renderer *render.Render, w http.ResponseWriter, name string, data any) {
	if err := renderer.HTML(w, http.StatusOK, name, data); err != nil {
		that.logger.Errorw("failed to render page", "error", err, "template", name)
	}
}
