package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipEntry хранит limiter и время последнего обращения
type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter ограничивает частоту попыток входа по IP-адресу.
// Записи неактивных адресов вытесняются по TTL, чтобы карта не росла
// бесконечно.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipEntry
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	maxSize  int
}

// NewIPRateLimiter создает новый per-IP limiter: r событий в секунду
// с burst b
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	rl := &IPRateLimiter{
		limiters: make(map[string]*ipEntry),
		rate:     r,
		burst:    b,
		ttl:      15 * time.Minute,
		maxSize:  10000,
	}

	go rl.evictLoop()

	return rl
}

// Allow сообщает, разрешена ли очередная попытка входа с данного IP
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[ip]
	if !ok {
		// Защита от переполнения карты: при достижении лимита новые
		// адреса ограничиваются без отслеживания
		if len(rl.limiters) >= rl.maxSize {
			return false
		}
		entry = &ipEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

func (rl *IPRateLimiter) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-rl.ttl)

		rl.mu.Lock()
		for ip, entry := range rl.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(rl.limiters, ip)
			}
		}
		rl.mu.Unlock()
	}
}
