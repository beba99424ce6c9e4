package httpapi

import (
	"errors"
	"net/http"

	"github.com/DoukyDPA/mission-ia/internal/auth"
	"github.com/DoukyDPA/mission-ia/internal/identity"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	session, err := a.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	session, err := a.identity.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// handleSession restores the session behind the bearer token. withAuth
// has already validated it; Restore re-resolves the full view-model so
// a renamed user or structure shows up without a fresh login.
func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	session, err := a.identity.Restore(r.Context(), token)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	id, _ := auth.UserIDFromContext(r.Context())
	a.identity.Logout(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]any{"status": "signed_out"})
}

func handleIdentityError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		writeError(w, r, http.StatusNotFound, userNotFoundMessage)
	case errors.Is(err, identity.ErrBadCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, identity.ErrDomainNotAllowed):
		writeError(w, r, http.StatusForbidden, domainNotAllowedMessage)
	case errors.Is(err, identity.ErrEmailTaken):
		writeError(w, r, http.StatusConflict, "email already registered")
	case errors.Is(err, identity.ErrNoSession):
		writeError(w, r, http.StatusUnauthorized, "no session")
	default:
		handleContentError(w, r, err)
	}
}

// User-facing messages stay in French, matching the interface language.
const (
	userNotFoundMessage     = "Utilisateur non trouvé. Utilisez un compte de démonstration."
	domainNotAllowedMessage = "Ce domaine email n'est pas autorisé. Contactez votre administrateur."
)
