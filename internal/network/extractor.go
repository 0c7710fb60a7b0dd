package network

import (
	"net"
	"net/http"
	"strings"
)

// Заголовки прокси в порядке приоритета
var proxyHeaders = []string{"X-Forwarded-For", "X-Real-IP", "X-Client-IP"}

// UnknownIP значение клиентского IP, когда ни один источник не дал
// валидного адреса
const UnknownIP = "unknown"

// RequestContext результат извлечения сетевого контекста запроса
type RequestContext struct {
	// ClientIP ближайший к клиенту валидный адрес ("unknown", если нет)
	ClientIP string
	// PublicIP лучший известный публичный адрес (пустая строка, если нет)
	PublicIP string
	// UserAgent значение заголовка User-Agent как есть
	UserAgent string
}

// Extract извлекает клиентский и публичный IP из запроса.
// Без побочных эффектов, безопасно вызывать несколько раз за запрос.
func Extract(r *http.Request) RequestContext {
	return RequestContext{
		ClientIP:  clientIP(r),
		PublicIP:  publicIP(r),
		UserAgent: r.Header.Get("User-Agent"),
	}
}

// clientIP сканирует прокси-заголовки в фиксированном порядке, затем
// адрес соединения. Кандидат принимается только если это синтаксически
// валидный IPv4 или IPv6 адрес.
func clientIP(r *http.Request) string {
	for _, header := range proxyHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		// X-Forwarded-For может содержать цепочку; берем первый
		// (ближайший к клиенту) элемент
		candidate := value
		if idx := strings.Index(value, ","); idx >= 0 {
			candidate = value[:idx]
		}
		candidate = strings.TrimSpace(candidate)

		if net.ParseIP(candidate) != nil {
			return candidate
		}
	}

	if host := remoteHost(r); net.ParseIP(host) != nil {
		return host
	}

	return UnknownIP
}

// publicIP определяет лучший известный публичный адрес: последний элемент
// X-Forwarded-For (ближайший к серверной цепочке), затем клиентский IP.
// Кандидаты из частных и зарезервированных диапазонов отбрасываются;
// отсутствие публичного адреса не считается ошибкой.
func publicIP(r *http.Request) string {
	if value := r.Header.Get("X-Forwarded-For"); value != "" {
		parts := strings.Split(value, ",")
		candidate := strings.TrimSpace(parts[len(parts)-1])
		if isPublicIP(candidate) {
			return candidate
		}
	}

	if candidate := clientIP(r); isPublicIP(candidate) {
		return candidate
	}

	return ""
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr без порта (например, в тестах)
		return r.RemoteAddr
	}
	return host
}

// isPublicIP проверяет, что адрес валиден и не принадлежит частным или
// зарезервированным диапазонам
func isPublicIP(s string) bool {
	ip := net.ParseIP(s)
	if ip == nil {
		return false
	}

	if ip.IsPrivate() || ip.IsLoopback() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return false
	}

	// Зарезервированные IPv4 диапазоны: 0.0.0.0/8 и 240.0.0.0/4
	if v4 := ip.To4(); v4 != nil {
		if v4[0] == 0 || v4[0] >= 240 {
			return false
		}
	}

	return true
}
