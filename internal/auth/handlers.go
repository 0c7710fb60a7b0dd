package auth

import (
	"FlexPBX-Admin/internal/config"
	"FlexPBX-Admin/internal/domain"
	"FlexPBX-Admin/internal/network"
	"FlexPBX-Admin/internal/repository"
	"FlexPBX-Admin/internal/securitylog"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthHandlers обработчики входа и выхода администраторов
type AuthHandlers struct {
	storage         repository.Storage
	passwordService *PasswordService
	jwtService      *JWTService
	limiter         *IPRateLimiter
	recorder        *securitylog.Recorder
	sessionCfg      *config.Session
	log             *zap.Logger
}

// NewAuthHandlers создает новые обработчики аутентификации
func NewAuthHandlers(
	storage repository.Storage,
	passwordService *PasswordService,
	jwtService *JWTService,
	limiter *IPRateLimiter,
	recorder *securitylog.Recorder,
	sessionCfg *config.Session,
	log *zap.Logger,
) *AuthHandlers {
	return &AuthHandlers{
		storage:         storage,
		passwordService: passwordService,
		jwtService:      jwtService,
		limiter:         limiter,
		recorder:        recorder,
		sessionCfg:      sessionCfg,
		log:             log,
	}
}

// LoginRequest структура запроса входа
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
	Redirect string `json:"redirect,omitempty"`
}

// LoginResponse структура ответа входа
type LoginResponse struct {
	Admin     domain.AdminIdentity `json:"admin"`
	CSRFToken string               `json:"csrf_token"`
	Redirect  string               `json:"redirect,omitempty"`
}

// TokenResponse структура ответа выпуска API-токена
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// ErrorResponse структура ошибки
type ErrorResponse struct {
	Error string `json:"error"`
}

// Login обработчик входа администратора
//
//	@Summary		Administrator login
//	@Description	Authenticate an administrator and start a session
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login request"
//	@Success		200		{object}	LoginResponse	"Login successful"
//	@Failure		400		{object}	ErrorResponse	"Invalid request data"
//	@Failure		401		{object}	ErrorResponse	"Invalid credentials"
//	@Failure		429		{object}	ErrorResponse	"Too many attempts"
//	@Router			/admin/api/auth/login [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	reqCtx := network.Extract(r)

	// Ограничение частоты попыток до разбора запроса
	if !h.limiter.Allow(reqCtx.ClientIP) {
		h.log.Warn("login rate limit exceeded", zap.String("client_ip", reqCtx.ClientIP))
		h.writeError(w, "Too many login attempts, try again later", http.StatusTooManyRequests)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid login request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))

	admin, err := h.storage.GetAdminByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrAdminNotFound) {
			h.log.Error("failed to look up admin", zap.Error(err))
			h.writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		h.failLogin(w, reqCtx, req.Username, "unknown username")
		return
	}

	if err := h.passwordService.VerifyPassword(admin.PasswordHash, req.Password); err != nil {
		h.failLogin(w, reqCtx, req.Username, "wrong password")
		return
	}

	// Обновляем время последнего входа
	now := time.Now()
	admin.LastLoginAt = &now
	if err := h.storage.UpdateAdmin(r.Context(), admin); err != nil {
		h.log.Warn("failed to update last login time", zap.Int64("admin_id", admin.ID), zap.Error(err))
	}

	sess, err := h.createSession(r, admin, reqCtx, req.Remember)
	if err != nil {
		h.log.Error("failed to create session", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, sess.Token, req.Remember)
	h.recordEvent(reqCtx, req.Username, domain.EventLoginSuccess, "administrator logged in")

	h.log.Info("admin logged in",
		zap.String("username", admin.Username),
		zap.String("client_ip", reqCtx.ClientIP),
		zap.Bool("remember", req.Remember))

	h.writeJSON(w, LoginResponse{
		Admin:     admin.Identity(),
		CSRFToken: sess.CSRFToken,
		Redirect:  sanitizeRedirect(req.Redirect),
	}, http.StatusOK)
}

// Logout обработчик выхода: уничтожает сессию и очищает cookie
//
//	@Summary		Administrator logout
//	@Description	Destroy the current session
//	@Tags			Authentication
//	@Produce		json
//	@Success		200	{object}	map[string]string	"Logged out"
//	@Failure		401	{object}	ErrorResponse		"Authentication required"
//	@Router			/admin/api/auth/logout [post]
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		h.writeError(w, "Session required", http.StatusUnauthorized)
		return
	}

	if err := h.storage.DeleteSession(r.Context(), sess.Token); err != nil &&
		!errors.Is(err, repository.ErrSessionNotFound) {
		h.log.Error("failed to delete session on logout", zap.Error(err))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	reqCtx := network.Extract(r)
	h.recordEvent(reqCtx, sess.AdminUsername, domain.EventLogout, "administrator logged out")

	h.writeJSON(w, map[string]string{"status": "logged_out"}, http.StatusOK)
}

// IssueAPIToken выпускает API-токен для безголовых клиентов панели
//
//	@Summary		Issue API token
//	@Description	Issue a short-lived bearer token for supervisor dashboard clients
//	@Tags			Authentication
//	@Produce		json
//	@Success		200	{object}	TokenResponse	"Token issued"
//	@Failure		401	{object}	ErrorResponse	"Authentication required"
//	@Router			/admin/api/auth/token [post]
func (h *AuthHandlers) IssueAPIToken(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		h.writeError(w, "Session required", http.StatusUnauthorized)
		return
	}

	token, err := h.jwtService.GenerateAPIToken(sess.AdminUsername, sess.AdminRole)
	if err != nil {
		h.log.Error("failed to generate API token", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, TokenResponse{
		Token:     token,
		ExpiresIn: int64(h.jwtService.config.APITokenDuration.Seconds()),
	}, http.StatusOK)
}

// SessionInfo возвращает проекции текущей сессии для отображения в шапке
// панели: вид сессии, остаток времени, сетевая зона
//
//	@Summary		Current session info
//	@Description	Read-only projections of the current session and its network zone
//	@Tags			Authentication
//	@Produce		json
//	@Success		200	{object}	domain.AdminSession	"Session info"
//	@Failure		401	{object}	ErrorResponse		"Authentication required"
//	@Router			/admin/api/session [get]
func (h *AuthHandlers) SessionInfo(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		h.writeError(w, "Session required", http.StatusUnauthorized)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"admin":                  sess.Identity(),
		"session_type":           sess.SessionType,
		"session_type_label":     sess.SessionTypeLabel,
		"session_time_remaining": sess.SessionRemaining,
		"session_expires_at":     sess.SessionExpiresAt,
		"client_ip":              sess.ClientIP,
		"public_ip":              sess.PublicIP,
		"network_type":           sess.NetworkType,
		"network_name":           sess.NetworkName,
		"network_trusted":        sess.NetworkTrusted,
		"network_color":          sess.NetworkColor,
		"csrf_token":             sess.CSRFToken,
		"csrf_field":             CSRFField(sess.CSRFToken),
	}, http.StatusOK)
}

// createSession создает новую сессию после успешного входа. Привязки
// login_ip и login_user_agent фиксирует первый запрос через guard.
func (h *AuthHandlers) createSession(r *http.Request, admin *domain.Admin, reqCtx network.RequestContext, remember bool) (*domain.AdminSession, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, err
	}

	idleTimeout := 0
	if !remember {
		idleTimeout = h.sessionCfg.IdleTimeoutSeconds
	}

	sess := &domain.AdminSession{
		ID:             uuid.New().String(),
		Token:          hex.EncodeToString(tokenBytes),
		AdminID:        admin.ID,
		Authenticated:  true,
		AdminUsername:  admin.Username,
		AdminRole:      admin.Role,
		AdminEmail:     admin.Email,
		RememberLogin:  remember,
		IdleTimeoutSec: idleTimeout,
		CSRFToken:      GenerateCSRFToken(),
	}

	if err := h.storage.CreateSession(r.Context(), sess); err != nil {
		return nil, err
	}

	return sess, nil
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, token string, remember bool) {
	cookie := &http.Cookie{
		Name:     h.sessionCfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.sessionCfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = 30 * 24 * 60 * 60
	}
	http.SetCookie(w, cookie)
}

// failLogin отвечает на неудачную попытку входа единым образом
func (h *AuthHandlers) failLogin(w http.ResponseWriter, reqCtx network.RequestContext, username, reason string) {
	h.log.Debug("login failed",
		zap.String("username", username),
		zap.String("client_ip", reqCtx.ClientIP),
		zap.String("reason", reason))

	h.recordEvent(reqCtx, username, domain.EventLoginFailed, reason)
	h.writeError(w, "Invalid username or password", http.StatusUnauthorized)
}

func (h *AuthHandlers) recordEvent(reqCtx network.RequestContext, username, eventType, detail string) {
	event := domain.SecurityEvent{
		Timestamp:     time.Now(),
		ClientIP:      reqCtx.ClientIP,
		AdminUsername: username,
		EventType:     eventType,
		Detail:        detail,
	}
	if err := h.recorder.Submit(&securitylog.Entry{Event: event, UserAgent: reqCtx.UserAgent}); err != nil {
		h.log.Error("failed to queue security event", zap.Error(err))
	}
}

// sanitizeRedirect пропускает только локальные пути, защищаясь от
// open redirect
func sanitizeRedirect(redirect string) string {
	if redirect == "" {
		return ""
	}
	if !strings.HasPrefix(redirect, "/") || strings.HasPrefix(redirect, "//") {
		return ""
	}
	return redirect
}

// Helper methods

func (h *AuthHandlers) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *AuthHandlers) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
