package utils

import (
	"strings"
	"time"

	"github.com/Koloda55SA/RaDev-sub001/backend/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Identity - данные пользователя из токена.
type Identity struct {
	UID   string
	Email string
	Role  string
}

func GenerateJWTToken(identity Identity, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"uid":   identity.UID,
		"email": identity.Email,
		"role":  identity.Role,
		"exp":   time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// BearerFromHeader возвращает токен из заголовка Authorization с префиксом
// "Bearer " или без него.
func BearerFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func ParseJWTToken(tokenString string, cfg *config.Config) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	// uid выдаёт наш провайдер, user_id и sub - токены Firebase
	uid := claimString(claims, "uid", "user_id", "sub")
	if uid == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	return &Identity{
		UID:   uid,
		Email: claimString(claims, "email"),
		Role:  claimString(claims, "role"),
	}, nil
}

// ExtractIdentityFromToken возвращает пользователя и исходный токен запроса.
func ExtractIdentityFromToken(c *fiber.Ctx, cfg *config.Config) (*Identity, string, error) {
	tokenString := BearerFromHeader(c.Get(fiber.HeaderAuthorization))
	if tokenString == "" {
		return nil, "", fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}

	identity, err := ParseJWTToken(tokenString, cfg)
	if err != nil {
		return nil, "", err
	}
	return identity, tokenString, nil
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
