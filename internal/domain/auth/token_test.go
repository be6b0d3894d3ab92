package auth

import (
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	secret := "test-secret"
	user := UserContext{UserID: "u1", EmployeeID: "e1", Email: "a@example.com", RoleName: RoleHR}

	token, err := IssueToken(secret, user, time.Now())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != "u1" || claims.EmployeeID != "e1" || claims.RoleName != RoleHR {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := IssueToken("secret-a", UserContext{UserID: "u1"}, time.Now())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected parse to fail with the wrong secret")
	}
}

func TestParseExpiredToken(t *testing.T) {
	token, err := IssueToken("secret", UserContext{UserID: "u1"}, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
