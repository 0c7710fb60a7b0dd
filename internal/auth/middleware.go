package auth

import (
	"FlexPBX-Admin/internal/domain"
	"FlexPBX-Admin/internal/network"
	"FlexPBX-Admin/internal/repository"
	"FlexPBX-Admin/internal/securitylog"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContextKey тип для ключей контекста
type ContextKey string

const (
	// SessionKey ключ для получения сессии администратора из контекста
	SessionKey ContextKey = "admin_session"
	// IdentityKey ключ для получения идентификации администратора из контекста
	IdentityKey ContextKey = "admin_identity"
)

// Middleware прогоняет каждый административный запрос через session guard:
// извлечение сетевого контекста, классификация зоны, проверка сессии.
type Middleware struct {
	storage    repository.Storage
	guard      *Guard
	classifier *network.Classifier
	jwtService *JWTService
	recorder   *securitylog.Recorder
	cookieName string
	log        *zap.Logger
}

// NewMiddleware создает новый guard middleware
func NewMiddleware(
	storage repository.Storage,
	guard *Guard,
	classifier *network.Classifier,
	jwtService *JWTService,
	recorder *securitylog.Recorder,
	cookieName string,
	log *zap.Logger,
) *Middleware {
	return &Middleware{
		storage:    storage,
		guard:      guard,
		classifier: classifier,
		jwtService: jwtService,
		recorder:   recorder,
		cookieName: cookieName,
		log:        log,
	}
}

// RequireSession middleware для страниц и API, требующих сессию администратора.
// После guard выполняется ровно одно из двух: либо перенаправление (и
// обработчик не вызывается), либо вызов обработчика с сессией в контексте.
func (m *Middleware) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqCtx := network.Extract(r)
		zone := m.classifier.Classify(reqCtx.ClientIP)

		sess := m.loadSession(r)
		decision := m.guard.Evaluate(sess, reqCtx, zone, r.URL.RequestURI(), time.Now())

		for _, event := range decision.Events {
			m.recordEvent(event, reqCtx.UserAgent)
		}

		if decision.Kind == DecisionRedirect {
			if decision.Destroy && sess != nil {
				if err := m.storage.DeleteSession(r.Context(), sess.Token); err != nil &&
					!errors.Is(err, repository.ErrSessionNotFound) {
					m.log.Error("failed to destroy session", zap.Error(err))
				}
				m.clearCookie(w)
			}
			m.redirectToLogin(w, r, decision.RedirectURL)
			return
		}

		// Записываем обратно изменения guard (привязки, last_activity,
		// CSRF, проекции). Одновременные запросы одной сессии могут
		// перезаписать last_activity друг друга, это допустимая гонка:
		// худший исход это чуть устаревшее окно таймаута.
		if err := m.storage.SaveSession(r.Context(), sess); err != nil {
			m.log.Warn("failed to persist session state",
				zap.String("session_id", sess.ID), zap.Error(err))
		}

		for key, value := range decision.Headers {
			w.Header().Set(key, value)
		}

		ctx := context.WithValue(r.Context(), SessionKey, sess)
		ctx = context.WithValue(ctx, IdentityKey, sess.Identity())
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireSessionOrToken middleware для JSON API супервизора: принимает
// либо cookie-сессию, либо Bearer API-токен безголового клиента
func (m *Middleware) RequireSessionOrToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.RequireSession(next)(w, r)
			return
		}

		tokenString := ExtractTokenFromBearer(authHeader)
		if tokenString == "" {
			m.writeError(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.log.Debug("invalid API token", zap.Error(err))
			if errors.Is(err, ErrExpiredToken) {
				m.writeError(w, "Token expired", http.StatusUnauthorized)
			} else {
				m.writeError(w, "Invalid token", http.StatusUnauthorized)
			}
			return
		}

		for key, value := range securityHeaders() {
			w.Header().Set(key, value)
		}

		ctx := context.WithValue(r.Context(), IdentityKey, domain.AdminIdentity{
			Username: claims.Username,
			Role:     claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireCSRF middleware для изменяющих состояние запросов: сверяет токен
// из заголовка X-CSRF-Token или поля формы csrf_token с токеном сессии.
// Несовпадение отклоняет действие, но не уничтожает сессию.
func (m *Middleware) RequireCSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := GetSessionFromContext(r.Context())
		if sess == nil {
			// Bearer-клиенты аутентифицируются токеном, CSRF неприменим
			if _, ok := GetIdentityFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}
			m.writeError(w, "Session required", http.StatusUnauthorized)
			return
		}

		candidate := r.Header.Get("X-CSRF-Token")
		if candidate == "" {
			candidate = r.FormValue("csrf_token")
		}

		if !VerifyCSRF(sess.CSRFToken, candidate) {
			m.log.Warn("CSRF verification failed",
				zap.String("admin_username", sess.AdminUsername),
				zap.String("path", r.URL.Path))
			m.writeError(w, "CSRF token mismatch", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// loadSession загружает сессию по cookie; nil, если cookie нет или
// сессия не найдена
func (m *Middleware) loadSession(r *http.Request) *domain.AdminSession {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil
	}

	token := strings.TrimSpace(cookie.Value)
	if token == "" {
		return nil
	}

	sess, err := m.storage.GetSessionByToken(r.Context(), token)
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			m.log.Error("failed to load session", zap.Error(err))
		}
		return nil
	}

	return sess
}

// recordEvent пишет структурированную строку журнала безопасности и
// ставит событие в очередь на долговременное хранение
func (m *Middleware) recordEvent(event domain.SecurityEvent, userAgent string) {
	m.log.Warn("security event",
		zap.Time("timestamp", event.Timestamp),
		zap.String("client_ip", event.ClientIP),
		zap.String("admin_username", event.AdminUsername),
		zap.String("event_type", event.EventType),
		zap.String("detail", event.Detail),
	)

	if err := m.recorder.Submit(&securitylog.Entry{Event: event, UserAgent: userAgent}); err != nil {
		m.log.Error("failed to queue security event", zap.Error(err))
	}
}

// CORS middleware для обработки CORS запросов
func (m *Middleware) CORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Список разрешенных origins для разработки дашборда
		allowedOrigins := []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}

		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Обработка preflight OPTIONS запросов
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// redirectToLogin завершает запрос: JSON 401 с маркером для API-клиентов,
// иначе HTTP-перенаправление на страницу входа
func (m *Middleware) redirectToLogin(w http.ResponseWriter, r *http.Request, redirectURL string) {
	if strings.HasPrefix(r.URL.Path, "/admin/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":    "Authentication required",
			"redirect": redirectURL,
		})
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func (m *Middleware) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (m *Middleware) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetSessionFromContext извлекает сессию администратора из контекста
func GetSessionFromContext(ctx context.Context) *domain.AdminSession {
	sess, ok := ctx.Value(SessionKey).(*domain.AdminSession)
	if !ok {
		return nil
	}
	return sess
}

// GetIdentityFromContext извлекает идентификацию администратора из контекста
func GetIdentityFromContext(ctx context.Context) (domain.AdminIdentity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.AdminIdentity)
	return identity, ok
}
