package security

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, errGen := GenerateToken("test-secret", 42, "123456789012345678", "ohm", true, time.Hour)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}

	claims, errParse := ParseToken("test-secret", token)
	if errParse != nil {
		t.Fatalf("parse token: %v", errParse)
	}
	if claims.UserID != 42 || claims.DiscordID != "123456789012345678" || claims.Username != "ohm" || !claims.IsAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, errGen := GenerateToken("secret-a", 1, "1", "a", false, time.Hour)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}
	if _, errParse := ParseToken("secret-b", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, errGen := GenerateToken("test-secret", 1, "1", "a", false, -time.Minute)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}
	if _, errParse := ParseToken("test-secret", token); !errors.Is(errParse, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", errParse)
	}
}

func TestSecretEqual(t *testing.T) {
	if !SecretEqual("shhh", "shhh") {
		t.Fatalf("expected matching secrets to compare equal")
	}
	if SecretEqual("shhh", "nope") {
		t.Fatalf("expected mismatched secrets to compare unequal")
	}
	if SecretEqual("", "") {
		t.Fatalf("empty configured secret must never match")
	}
}
