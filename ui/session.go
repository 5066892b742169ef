package ui

import (
	"net/http"

	"expdesign/domain/core"
)

const sessionCookie = "expdesign_session"

// ensureSession returns the browser's session ID, issuing a fresh one
// when the cookie is absent or malformed.
func (a *App) ensureSession(w http.ResponseWriter, r *http.Request) core.SessionID {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := core.ParseSessionID(c.Value); err == nil {
			return id
		}
	}

	id := core.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
