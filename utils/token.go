package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type JwtCustomClaim struct {
	AdminId   string `json:"admin_id"`
	AdminName string `json:"admin_name"`
	Username  string `json:"username"`
	jwt.StandardClaims
}

func getJwtSecret() []byte {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return []byte("TPQ-Secret")
	}
	return []byte(secret)
}

// TokenLifespan reads TOKEN_HOUR_LIFESPAN (default 24h).
func TokenLifespan() time.Duration {
	hours, err := strconv.Atoi(strings.TrimSpace(os.Getenv("TOKEN_HOUR_LIFESPAN")))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func JwtGenerate(adminId string, adminName string, username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(TokenLifespan())

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		AdminId:   adminId,
		AdminName: adminName,
		Username:  username,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
		},
	})

	token, err := t.SignedString(getJwtSecret())
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return getJwtSecret(), nil
	})
}

// ParseClaims validates token and returns its claims, or ErrUnauthorized.
func ParseClaims(token string) (*JwtCustomClaim, error) {
	parsed, err := JwtValidate(token)
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || claims.AdminId == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
