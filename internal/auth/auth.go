package auth

import (
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtIssuer = "techdeputies-api"

	// Customers and staff get tokens for different audiences so a token
	// cannot claim a role its audience does not carry.
	customerAudience = "techdeputies-customers"
	staffAudience    = "techdeputies-staff"

	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrEmptyJWTSecret   = errors.New("jwt secret cannot be empty")
	ErrUnknownRole      = errors.New("unknown role")
)

// JWTClaims identify an account. The subject repeats UserID as a string,
// and the token id is unique per issued token.
type JWTClaims struct {
	UserID    int    `json:"user_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func audienceFor(role Role) (string, error) {
	switch role {
	case RoleCustomer:
		return customerAudience, nil
	case RoleAdmin:
		return staffAudience, nil
	default:
		return "", ErrUnknownRole
	}
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hashedPassword, plainPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword)) == nil
}

func issue(userID int, email string, role Role, tokenType, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptyJWTSecret
	}
	aud, err := audienceFor(role)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &JWTClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    jwtIssuer,
			Subject:   strconv.Itoa(userID),
			Audience:  jwt.ClaimStrings{aud},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func GenerateAccessToken(userID int, email string, role Role, secret string) (string, error) {
	return issue(userID, email, role, tokenTypeAccess, secret, AccessTokenTTL)
}

func GenerateRefreshToken(userID int, email string, role Role, secret string) (string, error) {
	return issue(userID, email, role, tokenTypeRefresh, secret, RefreshTokenTTL)
}

// GenerateTokens issues the access and refresh pair handed out at login.
func GenerateTokens(userID int, email string, role Role, accessSecret, refreshSecret string) (accessToken, refreshToken string, err error) {
	if accessToken, err = GenerateAccessToken(userID, email, role, accessSecret); err != nil {
		return "", "", err
	}
	if refreshToken, err = GenerateRefreshToken(userID, email, role, refreshSecret); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// ValidateToken checks signature, issuer and expiry, then requires the
// audience and subject to agree with the role and user id claims.
func ValidateToken(tokenString, secret string) (*JWTClaims, error) {
	if secret == "" {
		return nil, ErrEmptyJWTSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	aud, err := audienceFor(claims.Role)
	if err != nil || !slices.Contains(claims.Audience, aud) {
		return nil, ErrInvalidToken
	}
	if claims.Subject != strconv.Itoa(claims.UserID) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func RefreshAccessToken(refreshToken, refreshSecret, accessSecret string) (string, *JWTClaims, error) {
	claims, err := ValidateToken(refreshToken, refreshSecret)
	if err != nil {
		return "", nil, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return "", nil, ErrInvalidTokenType
	}

	access, err := GenerateAccessToken(claims.UserID, claims.Email, claims.Role, accessSecret)
	if err != nil {
		return "", nil, err
	}
	return access, claims, nil
}
