package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

func TestHashPassword(t *testing.T) {
	t.Run("Successfully hash password", func(t *testing.T) {
		password := "mySecurePassword123"
		hashed, err := HashPassword(password)

		assert.NoError(t, err)
		assert.NotEmpty(t, hashed)
		assert.NotEqual(t, password, hashed)
	})

	t.Run("Different hashes for same password", func(t *testing.T) {
		hash1, _ := HashPassword("samePassword")
		hash2, _ := HashPassword("samePassword")

		assert.NotEqual(t, hash1, hash2)
	})
}

func TestCheckPassword(t *testing.T) {
	hashed, _ := HashPassword("correctPassword")

	assert.True(t, CheckPassword(hashed, "correctPassword"))
	assert.False(t, CheckPassword(hashed, "wrongPassword"))
	assert.False(t, CheckPassword(hashed, ""))
}

func TestGenerateAccessToken(t *testing.T) {
	t.Run("Fail with empty secret", func(t *testing.T) {
		token, err := GenerateAccessToken(1, "user@example.com", RoleCustomer, "")

		assert.Equal(t, ErrEmptyJWTSecret, err)
		assert.Empty(t, token)
	})

	t.Run("Token contains correct claims", func(t *testing.T) {
		token, err := GenerateAccessToken(42, "ops@example.com", RoleAdmin, testSecret)
		require.NoError(t, err)

		claims, err := ValidateToken(token, testSecret)
		require.NoError(t, err)

		assert.Equal(t, 42, claims.UserID)
		assert.Equal(t, "ops@example.com", claims.Email)
		assert.Equal(t, RoleAdmin, claims.Role)
		assert.Equal(t, tokenTypeAccess, claims.TokenType)
		assert.Equal(t, jwtIssuer, claims.Issuer)
		assert.Contains(t, claims.Audience, staffAudience)
		assert.Equal(t, "42", claims.Subject)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("Customers get the customer audience", func(t *testing.T) {
		token, err := GenerateAccessToken(7, "robin@example.com", RoleCustomer, testSecret)
		require.NoError(t, err)

		claims, err := ValidateToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, jwt.ClaimStrings{customerAudience}, claims.Audience)
	})

	t.Run("Unknown role is not issued", func(t *testing.T) {
		token, err := GenerateAccessToken(7, "robin@example.com", Role("technician"), testSecret)

		assert.ErrorIs(t, err, ErrUnknownRole)
		assert.Empty(t, token)
	})
}

func TestGenerateTokens(t *testing.T) {
	t.Run("Successfully generate both tokens", func(t *testing.T) {
		access, refresh, err := GenerateTokens(1, "user@example.com", RoleCustomer, "access-secret", "refresh-secret")

		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.NotEqual(t, access, refresh)
	})

	t.Run("Fail with empty refresh secret", func(t *testing.T) {
		access, refresh, err := GenerateTokens(1, "user@example.com", RoleCustomer, "access-secret", "")

		assert.Error(t, err)
		assert.Empty(t, access)
		assert.Empty(t, refresh)
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("Fail with wrong secret", func(t *testing.T) {
		token, _ := GenerateAccessToken(100, "test@example.com", RoleCustomer, testSecret)

		claims, err := ValidateToken(token, "wrong-secret")

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("Fail with invalid token format", func(t *testing.T) {
		claims, err := ValidateToken("invalid.token.format", testSecret)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("Fail with expired token", func(t *testing.T) {
		pastTime := time.Now().Add(-1 * time.Hour)
		claims := &JWTClaims{
			UserID:    100,
			Email:     "test@example.com",
			Role:      RoleCustomer,
			TokenType: tokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    jwtIssuer,
				Audience:  []string{customerAudience},
				ExpiresAt: jwt.NewNumericDate(pastTime),
				IssuedAt:  jwt.NewNumericDate(pastTime.Add(-15 * time.Minute)),
			},
		}
		tokenString, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

		validated, err := ValidateToken(tokenString, testSecret)

		assert.Equal(t, ErrTokenExpired, err)
		assert.Nil(t, validated)
	})
}

func signed(t *testing.T, claims *JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestValidateToken_ClaimsMustAgree(t *testing.T) {
	now := time.Now()
	base := func() *JWTClaims {
		return &JWTClaims{
			UserID:    5,
			Email:     "robin@example.com",
			Role:      RoleCustomer,
			TokenType: tokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    jwtIssuer,
				Subject:   "5",
				Audience:  jwt.ClaimStrings{customerAudience},
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
		}
	}

	t.Run("Well formed", func(t *testing.T) {
		_, err := ValidateToken(signed(t, base()), testSecret)
		assert.NoError(t, err)
	})

	t.Run("Admin role under customer audience", func(t *testing.T) {
		c := base()
		c.Role = RoleAdmin
		_, err := ValidateToken(signed(t, c), testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Subject differs from user id", func(t *testing.T) {
		c := base()
		c.Subject = "6"
		_, err := ValidateToken(signed(t, c), testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Foreign issuer", func(t *testing.T) {
		c := base()
		c.Issuer = "someone-else"
		_, err := ValidateToken(signed(t, c), testSecret)
		assert.Error(t, err)
	})
}

func TestRefreshAccessToken(t *testing.T) {
	accessSecret := "access-secret"
	refreshSecret := "refresh-secret"

	t.Run("Successfully refresh access token", func(t *testing.T) {
		refreshToken, _ := GenerateRefreshToken(1, "user@example.com", RoleCustomer, refreshSecret)

		newAccessToken, claims, err := RefreshAccessToken(refreshToken, refreshSecret, accessSecret)
		require.NoError(t, err)
		assert.Equal(t, 1, claims.UserID)

		accessClaims, err := ValidateToken(newAccessToken, accessSecret)
		require.NoError(t, err)
		assert.Equal(t, tokenTypeAccess, accessClaims.TokenType)
		assert.Equal(t, RoleCustomer, accessClaims.Role)
	})

	t.Run("Fail with access token instead of refresh token", func(t *testing.T) {
		accessToken, _ := GenerateAccessToken(1, "user@example.com", RoleCustomer, accessSecret)

		newAccessToken, claims, err := RefreshAccessToken(accessToken, accessSecret, accessSecret)

		assert.Equal(t, ErrInvalidTokenType, err)
		assert.Empty(t, newAccessToken)
		assert.Nil(t, claims)
	})
}

func TestTokenExpiration(t *testing.T) {
	token, err := GenerateRefreshToken(1, "user@example.com", RoleCustomer, testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)

	diff := claims.ExpiresAt.Time.Sub(time.Now().Add(RefreshTokenTTL)).Abs()
	assert.Less(t, diff, 2*time.Second)
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, r)

	_, ok = ParseRole("moderator")
	assert.False(t, ok)
}
