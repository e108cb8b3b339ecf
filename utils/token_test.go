package utils_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/mmdatafocus/tpq_backend/utils"
)

func TestJwtRoundTrip(t *testing.T) {
	t.Setenv("API_SECRET", "test-secret")
	t.Setenv("TOKEN_HOUR_LIFESPAN", "2")

	token, expiresAt, err := utils.JwtGenerate("admin-1", "TPQ Al-Ikhlas", "alikhlas")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	if d := time.Until(expiresAt); d < time.Hour || d > 2*time.Hour {
		t.Fatalf("expires in %v, want about 2h", d)
	}

	claims, err := utils.ParseClaims(token)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if claims.AdminId != "admin-1" || claims.AdminName != "TPQ Al-Ikhlas" || claims.Username != "alikhlas" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseClaimsRejects(t *testing.T) {
	t.Setenv("API_SECRET", "test-secret")

	if _, err := utils.ParseClaims("garbage"); !errors.Is(err, utils.ErrUnauthorized) {
		t.Fatalf("garbage: err = %v", err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &utils.JwtCustomClaim{
		AdminId:        "admin-1",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := utils.ParseClaims(signed); !errors.Is(err, utils.ErrUnauthorized) {
		t.Fatalf("expired: err = %v", err)
	}

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &utils.JwtCustomClaim{
		AdminId:        "admin-1",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})
	signed, err = foreign.SignedString([]byte("another-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := utils.ParseClaims(signed); !errors.Is(err, utils.ErrUnauthorized) {
		t.Fatalf("wrong secret: err = %v", err)
	}

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, &utils.JwtCustomClaim{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})
	signed, err = anonymous.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := utils.ParseClaims(signed); !errors.Is(err, utils.ErrUnauthorized) {
		t.Fatalf("missing admin id: err = %v", err)
	}
}

func TestPasswordHash(t *testing.T) {
	hashed, err := utils.HashPassword("rahasia123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := utils.ComparePassword(hashed, "rahasia123"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := utils.ComparePassword(hashed, "salah"); err == nil {
		t.Fatalf("wrong password accepted")
	}
}
