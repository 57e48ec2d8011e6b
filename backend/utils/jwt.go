package utils

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const identityKey = "identity"

// Identity is the authenticated caller as asserted by the token.
type Identity struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Plan   string `json:"plan"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Plan   string `json:"plan"`
	jwt.RegisteredClaims
}

func GenerateJWTToken(id Identity, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: id.UserID,
		Role:   id.Role,
		Plan:   id.Plan,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseIdentity validates the bearer token of the request.
func ParseIdentity(c *fiber.Ctx, secret string) (Identity, error) {
	tokenString := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return Identity{}, NewUnauthorizedError("Missing authorization token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, NewUnauthorizedError("Invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, NewUnauthorizedError("Invalid token")
	}
	if claims.UserID == "" {
		return Identity{}, NewUnauthorizedError("Invalid user ID in token")
	}

	return Identity{UserID: claims.UserID, Role: claims.Role, Plan: claims.Plan}, nil
}

func SetIdentity(c *fiber.Ctx, id Identity) {
	c.Locals(identityKey, id)
}

func IdentityFrom(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityKey).(Identity)
	return id, ok
}
