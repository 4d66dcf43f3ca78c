package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/modelshare/modelshare-server/internal/domain"
	domainerrors "github.com/modelshare/modelshare-server/internal/errors"
	"github.com/modelshare/modelshare-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	userKey     ctxKey = "user"
	tokenErrKey ctxKey = "tokenErr"
	clientIPKey ctxKey = "clientIP"
)

// CurrentUser returns the user whose bearer token came with the request.
// It fails with an authentication error when no valid token was sent.
func CurrentUser(ctx context.Context) (*domain.User, error) {
	if user, ok := ctx.Value(userKey).(*domain.User); ok && user != nil {
		return user, nil
	}
	if err, ok := ctx.Value(tokenErrKey).(error); ok && err != nil {
		return nil, err
	}
	return nil, domainerrors.Unauthorized("missing access token")
}

// ClientIP returns the client address recorded by clientMiddleware.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// clientMiddleware records the client address and, when a bearer token is
// present, the user it belongs to. Requests without a valid token continue
// anonymously; handlers that need a user call CurrentUser.
func clientMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), clientIPKey, remoteHost(r.RemoteAddr))

			if token, ok := bearerToken(r.Header.Get("Authorization")); ok && auth != nil {
				user, err := auth.WhoAmI(ctx, token)
				if err != nil {
					ctx = context.WithValue(ctx, tokenErrKey, err)
				} else {
					ctx = context.WithValue(ctx, userKey, user)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// remoteHost strips the port middleware.RealIP leaves on RemoteAddr when no
// proxy header was present.
func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
