package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/HuyNG25/pcm-backend/internal/config"
	"github.com/HuyNG25/pcm-backend/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
	}
}

func parseClaims(t *testing.T, cfg *config.Config, tokenStr string) *Claims {
	t.Helper()
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		t.Fatal("token claims invalid")
	}
	return claims
}

func TestIssueTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	member := &models.Member{
		ID:   uuid.New(),
		Role: models.MemberRoleTreasurer,
	}

	tokenStr, err := IssueToken(cfg, member)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims := parseClaims(t, cfg, tokenStr)
	if claims.MemberID != member.ID.String() {
		t.Errorf("MemberID = %q, want %q", claims.MemberID, member.ID)
	}
	if claims.Role != "treasurer" {
		t.Errorf("Role = %q, want treasurer", claims.Role)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Error("expiry not bounded by configured TTL")
	}
}

func TestTokenRejectedWithWrongSecret(t *testing.T) {
	cfg := testConfig()
	member := &models.Member{ID: uuid.New(), Role: models.MemberRoleMember}

	tokenStr, err := IssueToken(cfg, member)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	_, err = jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("a-different-secret"), nil
	})
	if err == nil {
		t.Error("token verified with the wrong secret")
	}
}
