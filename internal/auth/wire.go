package auth

import (
	"github.com/google/wire"

	"portal/config"
	"portal/pkg/jwt"
)

// ProvideJWT is a Wire provider function that creates the token signer
func ProvideJWT(cfg *config.Config) *jwt.JWT {
	return jwt.NewJWT(cfg.JWTSecret, cfg.JWTExpireSeconds)
}

// ProvideAuthMiddleware is a Wire provider function that creates an AuthMiddleware
func ProvideAuthMiddleware(tokens *jwt.JWT) *AuthMiddleware {
	return NewAuthMiddleware(tokens)
}

var Set = wire.NewSet(
	ProvideJWT,
	ProvideAuthMiddleware,
	wire.Bind(new(TokenValidator), new(*jwt.JWT)),
)
