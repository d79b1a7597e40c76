package user

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 72 * time.Hour

// IssueToken signs an HS256 token carrying the user id and role claims read
// back by GetUserIDFromCtx and RoleFromCtx.
func IssueToken(secret []byte, u User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    u.Role,
		"exp":     now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Middleware rejects requests without a valid bearer token.
func Middleware(secret []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: secret,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	})
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, bool) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

func GetUserIDFromCtx(c *fiber.Ctx) (int64, error) {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	switch v := claims["user_id"].(type) {
	case float64:
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fiber.ErrUnauthorized
		}
		return id, nil
	default:
		return 0, fiber.ErrUnauthorized
	}
}

// SessionKey returns the key under which the caller's cart is stored.
func SessionKey(c *fiber.Ctx) (string, error) {
	id, err := GetUserIDFromCtx(c)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func RoleFromCtx(c *fiber.Ctx) string {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}

// RequireRole answers 401 for anonymous callers and 403 for callers with a
// different role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := GetUserIDFromCtx(c); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		if RoleFromCtx(c) != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "You must be a " + role + " to access this page."})
		}
		return c.Next()
	}
}
