package utils

import (
	"testing"

	"campus-scheduler/core/config"
	"campus-scheduler/core/constants"
	"campus-scheduler/core/errors"

	"github.com/google/uuid"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	config.Set(&config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTTLMinutes: 5},
	})
}

func TestTokenRoundTrip(t *testing.T) {
	setTestConfig(t)
	userID := uuid.New()

	token, err := GenerateToken(userID, constants.RoleStudent, constants.ScopeTokenAccess)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, appErr := ValidateAndParseToken(token)
	if appErr != nil {
		t.Fatalf("validate failed: %v", appErr)
	}
	if claims.UserID != userID {
		t.Fatalf("user id = %v, want %v", claims.UserID, userID)
	}
	if claims.Role != constants.RoleStudent {
		t.Fatalf("role = %q, want %q", claims.Role, constants.RoleStudent)
	}
}

func TestValidateRejectsWrongScope(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateToken(uuid.New(), constants.RoleStudent, constants.ScopeTokenRefresh)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	_, appErr := ValidateAndParseToken(token)
	if appErr == nil {
		t.Fatal("refresh token must not pass access validation")
	}
	if appErr.Code != errors.ErrUnauthorized {
		t.Fatalf("got code %q, want %q", appErr.Code, errors.ErrUnauthorized)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	setTestConfig(t)

	_, appErr := ValidateAndParseToken("not.a.token")
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrInvalidTokenFormat {
		t.Fatalf("got code %q, want %q", appErr.Code, errors.ErrInvalidTokenFormat)
	}
}

func TestValidateRejectsTamperedSignature(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateToken(uuid.New(), constants.RoleStudent, constants.ScopeTokenAccess)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	config.Set(&config.Config{Auth: config.AuthConfig{JWTSecret: "different-secret", AccessTTLMinutes: 5}})
	if _, appErr := ValidateAndParseToken(token); appErr == nil {
		t.Fatal("token signed with another secret must not validate")
	}
}
