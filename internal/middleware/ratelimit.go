package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Abdox72/ITZone/internal/ratelimit"
	"github.com/sirupsen/logrus"
)

// Limiter решает, можно ли пропустить запрос с данным ключом.
type Limiter interface {
	Allow(ctx context.Context, policy ratelimit.Policy, key string) (bool, error)
}

const limiterTimeout = 200 * time.Millisecond

// RateLimit ограничивает частоту запросов по IP клиента.
// Если limiter недоступен, запрос пропускается.
func RateLimit(limiter Limiter, policy ratelimit.Policy, log logrus.FieldLogger) func(http.Handler) http.Handler {
	log = log.WithField("component", "RateLimit")

	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limiterTimeout)
			allowed, err := limiter.Allow(ctx, policy, clientIP(r))
			cancel()

			if err != nil {
				log.Warnf("Ошибка ограничителя %s, запрос пропущен: %v", policy.Name, err)
			} else if !allowed {
				if policy.Rate > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(1/policy.Rate)+1))
				}
				WriteDetail(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP берет адрес из RemoteAddr, который уже обработан middleware.RealIP.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
