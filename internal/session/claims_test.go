package session

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestDecodeClaimsReadsIdentity(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"id": 42, "username": "budi", "email": "budi@example.com", "role": "USER"})

	identity, err := DecodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{ID: "42", Username: "budi", Email: "budi@example.com", Role: models.RoleUser}, identity)
}

func TestDecodeClaimsFallsBackToAlternateNames(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"userId": "u-7", "email": "ani@example.com", "role": "ADMIN"})

	identity, err := DecodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "u-7", identity.ID)
	assert.Equal(t, "ani@example.com", identity.Username)
	assert.Equal(t, models.RoleAdmin, identity.Role)
}

func TestDecodeClaimsIgnoresSignatureAndExpiry(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"id": 1, "role": "USER", "exp": 1})

	_, err := DecodeClaims(token)
	assert.NoError(t, err)
}

func TestDecodeClaimsRejectsMissingRole(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"id": 1, "username": "budi"})

	_, err := DecodeClaims(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDecodeFailure)
}

func TestDecodeClaimsRejectsGarbage(t *testing.T) {
	payload, _ := json.Marshal(map[string]string{"role": "USER"})
	cases := []string{
		"",
		"not-a-token",
		"a.%%%.c",
		"a." + base64.RawURLEncoding.EncodeToString([]byte("{broken")) + ".c",
		base64.RawURLEncoding.EncodeToString(payload),
	}
	for _, token := range cases {
		_, err := DecodeClaims(token)
		assert.ErrorIs(t, err, appErrors.ErrDecodeFailure, token)
	}
}
