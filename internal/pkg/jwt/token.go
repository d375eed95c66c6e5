package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
)

// GenerateToken generates a signed JWT for the given user details
func GenerateToken(userID uuid.UUID, name, role string, cfg models.JWTConfig) (string, int64, error) {
	expirationTime := time.Now().Add(time.Duration(cfg.Expiration) * time.Minute)
	expiresAt := expirationTime.Unix()

	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"name":    name,
		"role":    role,
		"exp":     expiresAt,
		"iss":     cfg.Issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT and returns its claims
func ValidateToken(tokenString string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// Identity is the authenticated principal resolved from a token
type Identity struct {
	UserID uuid.UUID
	Name   string
	Role   string
}

// IdentityFromClaims extracts the authenticated identity from validated claims
func IdentityFromClaims(claims jwt.MapClaims) (*Identity, error) {
	rawID, ok := claims["user_id"]
	if !ok {
		return nil, fmt.Errorf("missing user_id claim")
	}

	userID, err := uuid.Parse(fmt.Sprintf("%v", rawID))
	if err != nil {
		return nil, fmt.Errorf("user_id claim is not a valid UUID: %w", err)
	}

	id := &Identity{UserID: userID}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}
	if role, ok := claims["role"].(string); ok {
		id.Role = role
	}
	return id, nil
}
