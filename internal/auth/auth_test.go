package auth

import (
	"kaizen-online/internal/models"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	password := "mySecretPassword123"
	hash, err := HashPassword(password)

	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, password, hash)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "mySecretPassword123"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	match := CheckPasswordHash(password, hash)
	require.True(t, match, "Password should match the hash")

	wrongPassword := "wrongPassword"
	match = CheckPasswordHash(wrongPassword, hash)
	require.False(t, match, "Wrong password should not match the hash")

	require.False(t, CheckPasswordHash(password, "not-a-bcrypt-hash"))
}

func TestGenerateAndVerifyJWT(t *testing.T) {
	secret := "my_super_secret_key_for_testing"
	now := time.Now()
	sess := &models.Session{
		ID:        uuid.New(),
		SubjectID: "E001",
		ExpiresAt: now.Add(30 * time.Minute),
	}

	tokenString, err := GenerateJWT(sess, "client-1", secret, now)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := VerifyJWT(tokenString, secret)
	require.NoError(t, err)
	require.NotNil(t, claims)
	require.Equal(t, "E001", claims.EmployeeID)
	require.Equal(t, "client-1", claims.ClientID)
	require.Equal(t, sess.ID.String(), claims.SessionID)
	require.WithinDuration(t, sess.ExpiresAt, claims.ExpiresAt.Time, time.Second)

	_, err = VerifyJWT(tokenString, "wrong_secret")
	require.Error(t, err)
	require.ErrorIs(t, err, jwt.ErrSignatureInvalid)
}

func TestVerifyJWT_Expired(t *testing.T) {
	secret := "my_super_secret_key_for_testing"
	now := time.Now()
	sess := &models.Session{
		ID:        uuid.New(),
		SubjectID: "E001",
		ExpiresAt: now.Add(-time.Minute),
	}

	tokenString, err := GenerateJWT(sess, "client-1", secret, now.Add(-31*time.Minute))
	require.NoError(t, err)

	_, err = VerifyJWT(tokenString, secret)
	require.Error(t, err)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyJWT_ForeignIssuer(t *testing.T) {
	secret := "my_super_secret_key_for_testing"
	claims := &AppClaims{
		EmployeeID: "E001",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "file-server",
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = VerifyJWT(tokenString, secret)
	require.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestVerifyJWTAllowExpired(t *testing.T) {
	secret := "my_super_secret_key_for_testing"
	now := time.Now()
	sess := &models.Session{
		ID:        uuid.New(),
		SubjectID: "E001",
		ExpiresAt: now.Add(-time.Minute),
	}

	tokenString, err := GenerateJWT(sess, "client-1", secret, now.Add(-31*time.Minute))
	require.NoError(t, err)

	claims, err := VerifyJWTAllowExpired(tokenString, secret)
	require.NoError(t, err)
	require.Equal(t, sess.ID.String(), claims.SessionID)

	_, err = VerifyJWTAllowExpired(tokenString, "wrong_secret")
	require.ErrorIs(t, err, jwt.ErrSignatureInvalid)
}
