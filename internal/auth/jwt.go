package auth

import (
	"kaizen-online/internal/models"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "kaizen-online"

// AppClaims binds an access token to one client and one session. The token
// expires with the session it was issued for; extending the session issues
// a new token.
type AppClaims struct {
	EmployeeID string `json:"employee_id"`
	ClientID   string `json:"client_id"`
	SessionID  string `json:"sid"`
	jwt.RegisteredClaims
}

func GenerateJWT(sess *models.Session, clientID, secret string, now time.Time) (string, error) {
	claims := &AppClaims{
		EmployeeID: sess.SubjectID,
		ClientID:   clientID,
		SessionID:  sess.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.SubjectID,
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func VerifyJWT(tokenString, secret string) (*AppClaims, error) {
	return verify(tokenString, secret, jwt.WithIssuer(issuer))
}

// VerifyJWTAllowExpired checks the signature and issuer but accepts a token
// past its expiry. Only logout uses it.
func VerifyJWTAllowExpired(tokenString, secret string) (*AppClaims, error) {
	claims, err := verify(tokenString, secret, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if claims.Issuer != issuer {
		return nil, jwt.ErrTokenInvalidIssuer
	}
	return claims, nil
}

func verify(tokenString, secret string, opts ...jwt.ParserOption) (*AppClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, opts...)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AppClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
