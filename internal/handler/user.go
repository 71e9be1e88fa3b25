package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/auth"
	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/service"
)

const stateCookieName = "oauth_state"

// UserHandler serves account registration, login and the GitHub OAuth
// flow. github is nil when OAuth is not configured.
type UserHandler struct {
	users    *service.AuthService
	github   *auth.GitHubProvider
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewUserHandler(
	users *service.AuthService,
	github *auth.GitHubProvider,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		users:    users,
		github:   github,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// HandleRegister handles POST /api/user/register and returns the new id.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.UserRegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := h.users.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, id)
}

// HandleLogin handles POST /api/user/login. The token is set as an
// HttpOnly cookie and also returned in the body for non-browser clients.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.UserLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.users.Login(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, r, res.Token)
	writeSuccess(w, loginUserVO(res.User, res.Token))
}

// HandleLogout handles POST /api/user/logout by expiring the cookie.
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeSuccess(w, true)
}

// HandleGetLoginUser handles GET /api/user/get/login.
func (h *UserHandler) HandleGetLoginUser(w http.ResponseWriter, r *http.Request) {
	user := caller(r)
	if user == nil {
		writeError(w, h.logger, apperror.Unauthorized("not logged in"))
		return
	}
	writeSuccess(w, loginUserVO(user, ""))
}

// HandleGitHubLogin starts the OAuth flow. The random state goes into a
// short-lived cookie and is checked on the callback.
func (h *UserHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback finishes the OAuth flow, logs the user in and
// redirects to the site root.
func (h *UserHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: invalid state")
		writeError(w, h.logger, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, h.logger, apperror.ValidationFailed("code", "missing OAuth code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeError(w, h.logger, apperror.OperationFailed("authentication failed"))
		return
	}

	res, err := h.users.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, r, res.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *UserHandler) setTokenCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func loginUserVO(u *model.User, token string) *model.LoginUserVO {
	return &model.LoginUserVO{
		UserVO:  *model.NewUserVO(u),
		Account: u.Account,
		Token:   token,
	}
}
