package session

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

// DecodeClaims reads the identity out of the token payload without checking
// the signature. The dashboard cannot verify tokens; the backend does that on
// every request.
func DecodeClaims(token string) (models.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return models.Identity{}, appErrors.Wrap(err, appErrors.ErrDecodeFailure.Code, appErrors.ErrDecodeFailure.Status, "token payload is unreadable")
	}

	role := claimString(claims, "role")
	if role == "" {
		return models.Identity{}, appErrors.Clone(appErrors.ErrDecodeFailure, "token has no role claim")
	}

	identity := models.Identity{
		ID:       firstClaim(claims, "id", "userId"),
		Username: firstClaim(claims, "username", "email"),
		Email:    claimString(claims, "email"),
		Role:     models.Role(role),
	}
	if identity.ID == "" {
		identity.ID = "0"
	}
	return identity, nil
}

func firstClaim(claims jwt.MapClaims, names ...string) string {
	for _, name := range names {
		if v := claimString(claims, name); v != "" {
			return v
		}
	}
	return ""
}

func claimString(claims jwt.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
