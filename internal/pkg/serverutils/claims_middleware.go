package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsMiddleware parses the bearer token and exposes the engine's request
// context: tenant id, caller id and the optional permission set. Session
// management lives elsewhere; this only reads claims at the boundary.
func ClaimsMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	ctx.Locals("user_id", claims["user_id"])
	ctx.Locals("tenant_id", claims["tenant_id"])
	if branch, ok := claims["branch_id"]; ok {
		ctx.Locals("branch_id", branch)
	}
	if perms, ok := claims["permissions"].([]interface{}); ok {
		names := make([]string, 0, len(perms))
		for _, p := range perms {
			if s, ok := p.(string); ok {
				names = append(names, s)
			}
		}
		ctx.Locals("permissions", names)
	}
	return ctx.Next()
}
