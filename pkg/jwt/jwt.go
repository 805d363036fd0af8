package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"portal/infrastructure"
)

type JWT struct {
	secretKey     []byte
	expireSeconds int64
	now           func() time.Time
}

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func NewJWT(secretKey string, expireSeconds int64) *JWT {
	return &JWT{
		secretKey:     []byte(secretKey),
		expireSeconds: expireSeconds,
		now:           time.Now,
	}
}

func (j *JWT) GenerateToken(userID string) (string, error) {
	now := j.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Second * time.Duration(j.expireSeconds))),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// ValidateToken verifies signature and expiry and returns the claims.
// Expired tokens yield infrastructure.ErrTokenExpired, every other
// failure infrastructure.ErrInvalidToken.
func (j *JWT) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, infrastructure.ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secretKey, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, infrastructure.ErrTokenExpired
		}
		return nil, infrastructure.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}

	return nil, infrastructure.ErrInvalidToken
}
