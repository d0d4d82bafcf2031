package trustgate

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func validTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Session.SigningKey = []byte("0123456789abcdef0123456789abcdef")
	return cfg
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OTP.Digits != 6 {
		t.Fatalf("expected 6 digit codes, got %d", cfg.OTP.Digits)
	}
	if cfg.OTP.ChallengeTTL != 45*time.Second {
		t.Fatalf("expected 45s countdown, got %v", cfg.OTP.ChallengeTTL)
	}
	if cfg.OTP.MaxResendAttempts != 3 {
		t.Fatalf("expected 3 resend attempts, got %d", cfg.OTP.MaxResendAttempts)
	}
	if cfg.Trust.Window != 30*24*time.Hour {
		t.Fatalf("expected 30 day trust window, got %v", cfg.Trust.Window)
	}
	if cfg.Session.IdentityTTL != 5*time.Minute || cfg.Session.VerifiedTTL != 24*time.Hour {
		t.Fatalf("unexpected session marker lifetimes: %v / %v", cfg.Session.IdentityTTL, cfg.Session.VerifiedTTL)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"digits too small":     func(c *Config) { c.OTP.Digits = 3 },
		"digits too large":     func(c *Config) { c.OTP.Digits = 11 },
		"zero challenge ttl":   func(c *Config) { c.OTP.ChallengeTTL = 0 },
		"negative resends":     func(c *Config) { c.OTP.MaxResendAttempts = -1 },
		"empty marker":         func(c *Config) { c.OTP.SuccessMarker = "" },
		"zero trust window":    func(c *Config) { c.Trust.Window = 0 },
		"zero identity ttl":    func(c *Config) { c.Session.IdentityTTL = 0 },
		"verified below ident": func(c *Config) { c.Session.VerifiedTTL = time.Minute },
		"short signing key":    func(c *Config) { c.Session.SigningKey = []byte("short") },
	}

	for name, mutate := range cases {
		cfg := validTestConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestCloneConfigCopiesSigningKey(t *testing.T) {
	cfg := validTestConfig()
	clone := cloneConfig(cfg)

	clone.Session.SigningKey[0] ^= 0xff
	if cfg.Session.SigningKey[0] == clone.Session.SigningKey[0] {
		t.Fatal("expected an independent signing key copy")
	}
}

func TestBuilderRequiresCollaborators(t *testing.T) {
	if _, err := New().WithConfig(validTestConfig()).Build(); err == nil {
		t.Fatal("expected build failure without collaborators")
	}
	if _, err := New().Build(); err == nil {
		t.Fatal("expected build failure without a signing key")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	codec, err := NewAESGCMCodec([]byte("test-envelope-secret"))
	if err != nil {
		t.Fatalf("NewAESGCMCodec failed: %v", err)
	}

	builder := New().
		WithConfig(validTestConfig()).
		WithRedis(rdb).
		WithCredentialBackend(&fakeCredentials{reply: okCredentialReply()}).
		WithOTPBackend(newFakeGateway(codec)).
		WithCodec(codec).
		WithSignalProvider(staticSignals{})

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := builder.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}
