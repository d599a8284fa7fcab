package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsFor(role models.UserRole, expires time.Time) models.JWTClaims {
	return models.JWTClaims{
		UserID: "user-1",
		Role:   role,
		Email:  "head@campus.test",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "campus-auth",
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
}

func TestTokenServiceValidateToken(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "campus-auth"})
	token := signToken(t, jwt.SigningMethodHS256, "secret", claimsFor(models.RoleDepartmentHead, time.Now().Add(time.Hour)))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleDepartmentHead, claims.Role)
}

func TestTokenServiceRejectsInvalidTokens(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "campus-auth"})
	valid := claimsFor(models.RoleAdmin, time.Now().Add(time.Hour))

	noExpiry := valid
	noExpiry.ExpiresAt = nil
	otherIssuer := valid
	otherIssuer.Issuer = "elsewhere"
	unknownRole := valid
	unknownRole.Role = "JANITOR"

	cases := map[string]string{
		"wrong secret":  signToken(t, jwt.SigningMethodHS256, "other", valid),
		"wrong method":  signToken(t, jwt.SigningMethodHS512, "secret", valid),
		"expired":       signToken(t, jwt.SigningMethodHS256, "secret", claimsFor(models.RoleAdmin, time.Now().Add(-time.Hour))),
		"no expiry":     signToken(t, jwt.SigningMethodHS256, "secret", noExpiry),
		"other issuer":  signToken(t, jwt.SigningMethodHS256, "secret", otherIssuer),
		"unknown role":  signToken(t, jwt.SigningMethodHS256, "secret", unknownRole),
		"garbage token": "not-a-jwt",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.True(t, appErrors.IsCode(err, appErrors.ErrUnauthorized.Code))
		})
	}
}
