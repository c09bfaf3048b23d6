package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret = []byte(getSecret())

func getSecret() string {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret
	}
	return "dev-secret-change-in-production"
}

// Claims is the bearer credential carried by every authenticated request:
// user identity, role and home warehouse.
type Claims struct {
	UserID     uint   `json:"user_id"`
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
	Warehouse  string `json:"warehouse"`
	jwt.RegisteredClaims
}

// GenerateToken generates a short-lived access token.
func GenerateToken(userID uint, employeeID, role, warehouse string) (string, error) {
	return generate(userID, employeeID, role, warehouse, 24*time.Hour)
}

// GenerateRefreshToken generates a long-lived refresh token.
func GenerateRefreshToken(userID uint, employeeID, role, warehouse string) (string, error) {
	return generate(userID, employeeID, role, warehouse, 7*24*time.Hour)
}

func generate(userID uint, employeeID, role, warehouse string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:     userID,
		EmployeeID: employeeID,
		Role:       role,
		Warehouse:  warehouse,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "pickerpack-fulfillment",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateToken parses and validates a token, returning its claims.
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
