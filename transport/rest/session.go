package rest

import (
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

const sessionCookie = "game_session"

// session resolves the caller's game, starting a new one and refreshing the cookie as needed.
func (that *Server) session(w http.ResponseWriter, r *http.Request) (*entity.Game, error) {
	var id string
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		id = cookie.Value
	}

	game, err := that.games.GetOrCreateGame(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if game.ID != id {
		that.setSessionCookie(w, game.ID)
	}

	return game, nil
}

func (that *Server) setSessionCookie(w http.ResponseWriter, id string) {
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if that.sessionTTL > 0 {
		cookie.Expires = time.Now().Add(that.sessionTTL)
	}

	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
