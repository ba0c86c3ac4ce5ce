package auth

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Setenv(secretEnvVariable, "test-secret")
	ResetSecretForTests()

	user := User{
		ID:             "u1",
		Email:          "owner@example.com",
		Role:           RoleOwner,
		OrganizationID: "org-1",
	}
	token, err := GenerateToken(user, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != string(RoleOwner) {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
	if claims.OrganizationID != "org-1" {
		t.Fatalf("unexpected org: %s", claims.OrganizationID)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	t.Setenv(secretEnvVariable, "test-secret")
	ResetSecretForTests()

	token, err := GenerateToken(User{ID: "u1", Role: RoleViewer}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseAndValidate(token + "x"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	t.Setenv(secretEnvVariable, "test-secret")
	ResetSecretForTests()

	token, err := GenerateToken(User{ID: "u1", Role: RoleViewer}, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := ParseAndValidate(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	t.Setenv(secretEnvVariable, "")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	if _, err := GenerateToken(User{ID: "u1"}, time.Minute); err == nil {
		t.Fatal("expected error without configured secret")
	}
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"owner":   RoleOwner,
		" Admin ": RoleAdmin,
		"VIEWER":  RoleViewer,
	}
	for raw, want := range cases {
		got, err := ParseRole(raw)
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseRole(%q) = %s, want %s", raw, got, want)
		}
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
