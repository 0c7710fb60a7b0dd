package auth

import (
	"fmt"
	"net/url"
	"time"

	"FlexPBX-Admin/internal/domain"
	"FlexPBX-Admin/internal/network"
)

// LoginPath путь страницы входа, на которую перенаправляет guard
const LoginPath = "/admin/login"

// Маркеры причин перенаправления для страницы входа
const (
	MarkerIPChanged = "security=ip_changed"
	MarkerUAChanged = "security=ua_changed"
	MarkerTimeout   = "timeout=1"
)

// GuardPolicy политика таймаутов сессий
type GuardPolicy struct {
	// ExtendedTrusted срок extended-сессии в доверенной зоне
	ExtendedTrusted time.Duration
	// ExtendedPublic срок extended-сессии в недоверенной зоне
	ExtendedPublic time.Duration
}

// DefaultGuardPolicy возвращает политику по умолчанию: 30 дней в доверенной
// зоне, 7 дней в публичной
func DefaultGuardPolicy() GuardPolicy {
	return GuardPolicy{
		ExtendedTrusted: 30 * 24 * time.Hour,
		ExtendedPublic:  7 * 24 * time.Hour,
	}
}

// DecisionKind вид решения guard
type DecisionKind int

const (
	// DecisionContinue запрос проходит к обработчику страницы
	DecisionContinue DecisionKind = iota
	// DecisionRedirect запрос завершается перенаправлением на вход
	DecisionRedirect
)

// Decision результат проверки запроса session guard.
//
// Guard не выполняет побочных эффектов сам: уничтожение сессии, запись
// событий безопасности и выставление заголовков описываются решением,
// а выполняет их вызывающий слой. Это делает автомат состояний
// тестируемым без HTTP-сервера.
type Decision struct {
	Kind        DecisionKind
	RedirectURL string
	// Destroy сессия должна быть необратимо уничтожена
	Destroy bool
	// Events события безопасности для журнала (может быть непустым и
	// при Continue: несовпадение User-Agent в доверенной зоне)
	Events []domain.SecurityEvent
	// Headers заголовки ответа при успешном прохождении
	Headers map[string]string
}

// Guard проверяет каждый административный запрос: аутентификация,
// привязка к IP и User-Agent, политика таймаута, выдача CSRF-токена.
type Guard struct {
	policy GuardPolicy
}

// NewGuard создает новый session guard
func NewGuard(policy GuardPolicy) *Guard {
	return &Guard{policy: policy}
}

// securityHeaders возвращает заголовки, выставляемые на каждый прошедший
// запрос: запрет фреймов, запрет MIME-sniffing, legacy XSS-фильтр
func securityHeaders() map[string]string {
	return map[string]string{
		"X-Frame-Options":        "SAMEORIGIN",
		"X-Content-Type-Options": "nosniff",
		"X-XSS-Protection":       "1; mode=block",
	}
}

// Evaluate выполняет автомат состояний guard для одного запроса.
//
// Проверки идут строго по порядку: аутентификация, привязка IP, привязка
// User-Agent, таймаут, выдача CSRF. Сессия мутируется на месте
// (первая фиксация привязок, обновление last_activity, проекции для
// отображения); сохраняет ее вызывающий слой. При Destroy содержимое
// сессии недействительно и должно быть стерто из хранилища.
func (g *Guard) Evaluate(sess *domain.AdminSession, reqCtx network.RequestContext, zone network.Zone, requestURI string, now time.Time) Decision {
	// 1. Аутентификация: неаутентифицированный запрос перенаправляется
	// с исходным URL до любых изменений состояния сессии
	if sess == nil || !sess.Authenticated {
		return Decision{
			Kind:        DecisionRedirect,
			RedirectURL: LoginPath + "?redirect=" + url.QueryEscape(requestURI),
		}
	}

	var events []domain.SecurityEvent

	// 2. Привязка к IP входа. Доверенные сети освобождены от проверки:
	// адрес внутри VPN может меняться легитимно
	if sess.HasLoginBinding() {
		if sess.LoginIP != reqCtx.ClientIP && !zone.Trusted {
			return Decision{
				Kind:        DecisionRedirect,
				RedirectURL: LoginPath + "?" + MarkerIPChanged,
				Destroy:     true,
				Events: append(events, hijackEvent(sess, reqCtx, now, domain.EventIPChanged,
					fmt.Sprintf("login IP %s, request IP %s on untrusted network %s", sess.LoginIP, reqCtx.ClientIP, zone.Type))),
			}
		}
	} else {
		sess.LoginIP = reqCtx.ClientIP
	}

	// 3. Привязка к User-Agent. Несовпадение всегда попадает в журнал,
	// но жестко останавливает запрос только в недоверенной зоне
	if sess.LoginUserAgent != "" {
		if sess.LoginUserAgent != reqCtx.UserAgent {
			evt := hijackEvent(sess, reqCtx, now, domain.EventUAChanged,
				fmt.Sprintf("login UA %q, request UA %q on network %s", sess.LoginUserAgent, reqCtx.UserAgent, zone.Type))
			if !zone.Trusted {
				return Decision{
					Kind:        DecisionRedirect,
					RedirectURL: LoginPath + "?" + MarkerUAChanged,
					Destroy:     true,
					Events:      append(events, evt),
				}
			}
			events = append(events, evt)
		}
	} else {
		sess.LoginUserAgent = reqCtx.UserAgent
	}

	// 4. Политика таймаута
	kind, duration := g.timeoutPolicy(sess, zone)
	if sess.LastActivity != nil && now.Sub(*sess.LastActivity) > duration {
		return Decision{
			Kind:        DecisionRedirect,
			RedirectURL: LoginPath + "?" + MarkerTimeout,
			Destroy:     true,
			Events: append(events, hijackEvent(sess, reqCtx, now, domain.EventSessionTimeout,
				fmt.Sprintf("%s session expired after %s of inactivity", kind, now.Sub(*sess.LastActivity).Round(time.Second)))),
		}
	}
	activity := now
	sess.LastActivity = &activity

	// Проекции для отображения; на будущие решения не влияют
	g.projectSessionInfo(sess, reqCtx, zone, kind, duration, now)

	// 5. CSRF-токен: выдается один раз и не ротируется в течение сессии
	if sess.CSRFToken == "" {
		sess.CSRFToken = GenerateCSRFToken()
	}

	// 6. Заголовки безопасности
	return Decision{
		Kind:    DecisionContinue,
		Events:  events,
		Headers: securityHeaders(),
	}
}

// timeoutPolicy выбирает вид сессии и срок ее жизни
func (g *Guard) timeoutPolicy(sess *domain.AdminSession, zone network.Zone) (string, time.Duration) {
	if !sess.RememberLogin && sess.IdleTimeoutSec > 0 {
		return domain.SessionKindIdleTimeout, time.Duration(sess.IdleTimeoutSec) * time.Second
	}
	if zone.Trusted {
		return domain.SessionKindExtended, g.policy.ExtendedTrusted
	}
	return domain.SessionKindExtended, g.policy.ExtendedPublic
}

// projectSessionInfo заполняет производные поля сессии для отображения
func (g *Guard) projectSessionInfo(sess *domain.AdminSession, reqCtx network.RequestContext, zone network.Zone, kind string, duration time.Duration, now time.Time) {
	sess.ClientIP = reqCtx.ClientIP
	sess.PublicIP = reqCtx.PublicIP
	sess.NetworkType = string(zone.Type)
	sess.NetworkName = zone.Name
	sess.NetworkTrusted = zone.Trusted
	sess.NetworkColor = zone.Color

	sess.SessionType = kind
	sess.SessionTypeLabel = sessionTypeLabel(kind, zone, duration)
	sess.SessionRemaining = int64(duration.Seconds())
	expires := now.Add(duration)
	sess.SessionExpiresAt = &expires
}

func sessionTypeLabel(kind string, zone network.Zone, duration time.Duration) string {
	if kind == domain.SessionKindIdleTimeout {
		return fmt.Sprintf("Idle timeout (%d min)", int(duration.Minutes()))
	}
	if zone.Trusted {
		return fmt.Sprintf("Extended (%d days, trusted network)", int(duration.Hours()/24))
	}
	return fmt.Sprintf("Extended (%d days)", int(duration.Hours()/24))
}

// hijackEvent формирует событие безопасности по текущему запросу
func hijackEvent(sess *domain.AdminSession, reqCtx network.RequestContext, now time.Time, eventType, detail string) domain.SecurityEvent {
	return domain.SecurityEvent{
		Timestamp:     now,
		ClientIP:      reqCtx.ClientIP,
		AdminUsername: sess.AdminUsername,
		EventType:     eventType,
		Detail:        detail,
	}
}
