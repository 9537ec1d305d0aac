package config

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "kboard")
	t.Setenv("DB_NAME", "kboard")
	t.Setenv("JWT_SECRET", strings.Repeat("k", 32))
}

func TestParseDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("expected default ttl 2h, got %v", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected default bcrypt cost 10, got %d", cfg.BcryptCost)
	}
	if !slices.Equal(cfg.CORSAllowedOrigins, []string{"*"}) {
		t.Fatalf("expected wildcard origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.AvatarsEnabled() {
		t.Fatal("avatars must be disabled without credentials")
	}
	want := "host=localhost port=5432 user=kboard password= dbname=kboard sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Fatalf("expected dsn %q, got %q", want, got)
	}
}

func TestParseOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("FIREBASE_CREDENTIALS_PATH", "/etc/kboard/firebase.json")
	t.Setenv("AVATAR_BUCKET", "kboard-images")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "9000" || cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if !slices.Equal(cfg.CORSAllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.AvatarsEnabled() {
		t.Fatal("expected avatars enabled")
	}
}

func TestParseMissingSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Parse()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") && !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestParseRejectsShortSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "short")

	if _, err := Parse(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected short secret error, got %v", err)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := map[string][2]string{
		"bad ttl":           {"JWT_TTL", "soon"},
		"negative ttl":      {"JWT_TTL", "-1h"},
		"bcrypt too low":    {"BCRYPT_COST", "2"},
		"bcrypt not an int": {"BCRYPT_COST", "ten"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(kv[0], kv[1])
			if _, err := Parse(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestParseBucketRequiredWithCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("FIREBASE_CREDENTIALS_PATH", "/etc/kboard/firebase.json")

	if _, err := Parse(); err == nil || !strings.Contains(err.Error(), "AVATAR_BUCKET") {
		t.Fatalf("expected bucket error, got %v", err)
	}
}
