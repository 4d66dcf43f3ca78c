package providers

import (
	"github.com/samber/do/v2"

	"github.com/modelshare/modelshare-server/internal/auth"
	"github.com/modelshare/modelshare-server/internal/config"
	"github.com/modelshare/modelshare-server/internal/logger"
	"github.com/modelshare/modelshare-server/internal/ratelimit"
)

// AuthKey wraps the authentication key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the authentication key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}

	// Update config with the loaded key
	cfg.Auth.AccessTokenKey = key

	log.Info("Authentication key loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.AccessTokenDuration)
}

// ProvidePasswordHasher provides the bcrypt password hasher.
func ProvidePasswordHasher(i do.Injector) (*auth.PasswordHasher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return auth.NewPasswordHasher(cfg.Auth.BcryptCost), nil
}

// LoginLimiterHandle wraps the per-IP login limiter with shutdown capability.
type LoginLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LoginLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideLoginLimiter provides the limiter that throttles login attempts per client IP.
func ProvideLoginLimiter(i do.Injector) (*LoginLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.PerMinute(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)
	return &LoginLimiterHandle{KeyedRateLimiter: limiter}, nil
}
