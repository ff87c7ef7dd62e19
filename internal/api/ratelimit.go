package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
)

// limitLogins is a huma operation middleware that rate limits by client IP.
func (s *Server) limitLogins(ctx huma.Context, next func(huma.Context)) {
	key := clientIP(ctx.Header("X-Forwarded-For"), ctx.Header("X-Real-IP"), ctx.RemoteAddr())

	if !s.loginLimiter.Allow(key) {
		s.logger.WarnContext(ctx.Context(), "rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
		)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many login attempts",
			domainerrors.RateLimited("too many login attempts, try again later"))
		return
	}

	next(ctx)
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection address without its port.
func clientIP(forwardedFor, realIP, remoteAddr string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}
	if realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
