package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/voltpath/labstock-backend/pkg/config"
	"github.com/voltpath/labstock-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "labstock",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	userID := uuid.New()

	payload := AccessTokenPayload{
		UserID: userID,
		Name:   "Ada Byron",
		Email:  "ada@example.com",
		Role:   enums.RoleLabTechnician,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.RoleLabTechnician {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Email != "ada@example.com" {
		t.Fatalf("unexpected email %s", claims.Email)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
	if !claims.ExpiresAt.After(now.Add(29 * time.Minute)) {
		t.Fatalf("expiry too soon: %s", claims.ExpiresAt)
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	base := config.JWTConfig{Secret: "secret", Issuer: "labstock", ExpirationMinutes: 30}
	payload := AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleAdmin}

	cases := []struct {
		name    string
		cfg     config.JWTConfig
		payload AccessTokenPayload
		wantErr string
	}{
		{"missing secret", config.JWTConfig{Issuer: "labstock", ExpirationMinutes: 30}, payload, "secret"},
		{"missing issuer", config.JWTConfig{Secret: "s", ExpirationMinutes: 30}, payload, "issuer"},
		{"zero expiry", config.JWTConfig{Secret: "s", Issuer: "labstock"}, payload, "expiration"},
		{"nil user", base, AccessTokenPayload{Role: enums.RoleAdmin}, "user id"},
		{"bad role", base, AccessTokenPayload{UserID: uuid.New(), Role: enums.Role("Wizard")}, "role"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := MintAccessToken(tc.cfg, time.Now(), tc.payload)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "labstock", ExpirationMinutes: 30}
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleResearcher})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature validation failure")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "labstock", ExpirationMinutes: 5}
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleUser})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
