package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"html"
)

// csrfTokenBytes длина CSRF-токена: 256 бит случайности
const csrfTokenBytes = 32

// GenerateCSRFToken генерирует криптографически стойкий CSRF-токен
// в hex-кодировке (64 символа)
func GenerateCSRFToken() string {
	buf := make([]byte, csrfTokenBytes)
	// crypto/rand.Read не возвращает ошибку на поддерживаемых платформах
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// CSRFField возвращает скрытое поле формы с экранированным токеном
func CSRFField(token string) string {
	return fmt.Sprintf(`<input type="hidden" name="csrf_token" value="%s">`, html.EscapeString(token))
}

// VerifyCSRF сравнивает кандидата с токеном сессии за постоянное время.
// Неудачная проверка отклоняет только конкретное действие, сессию
// не уничтожает.
func VerifyCSRF(sessionToken, candidate string) bool {
	if sessionToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sessionToken), []byte(candidate)) == 1
}
