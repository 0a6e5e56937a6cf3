// Package auth resolves the caller identity from a bearer token issued by the
// identity service. Tokens are HS256 JWTs carrying the user id and capability
// flags.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	jwt.RegisteredClaims
	UserID     int64 `json:"id"`
	IsAdmin    bool  `json:"is_admin"`
	IsSupplier bool  `json:"is_supplier"`
	IsCustomer bool  `json:"is_customer"`
}

// GenerateToken signs a token for identity. Used by tests and local tooling;
// production tokens come from the identity service.
func GenerateToken(username string, identity models.Identity, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		UserID:     identity.ID,
		IsAdmin:    identity.IsAdmin,
		IsSupplier: identity.IsSupplier,
		IsCustomer: identity.IsCustomer,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseIdentity validates tokenString and returns the identity it carries.
// Every failure unwraps to common.ErrInvalidToken.
func ParseIdentity(tokenString string, secretKey []byte) (models.Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, fmt.Errorf("%w: token expired", common.ErrInvalidToken)
		}
		return models.Identity{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == 0 {
		return models.Identity{}, common.ErrInvalidToken
	}

	return models.Identity{
		ID:         claims.UserID,
		IsAdmin:    claims.IsAdmin,
		IsSupplier: claims.IsSupplier,
		IsCustomer: claims.IsCustomer,
	}, nil
}
