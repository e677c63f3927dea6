package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gravitas-games/chromio/internal/config"
)

const testIssuer = "GoLoginServer"

type fakeBlacklist struct {
	listed map[string]bool
	err    error
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.listed[userID], nil
}

func newTestKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func publicKeyPEM(t *testing.T, pub interface{}) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// serveKey publishes the public half of key the way the login server does.
func serveKey(t *testing.T, key *ecdsa.PrivateKey) *httptest.Server {
	t.Helper()
	body := publicKeyPEM(t, &key.PublicKey)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func signToken(t *testing.T, key *ecdsa.PrivateKey, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims() *Claims {
	return &Claims{
		UserID:      42,
		Email:       "ada@example.com",
		Username:    "ada",
		AuthMethod:  "password",
		Permissions: 3,
		Activated:   1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestValidateToken(t *testing.T) {
	key := newTestKey(t)
	other := newTestKey(t)
	bl := &fakeBlacklist{listed: map[string]bool{"7": true}}
	v := &JWTValidator{
		config:    config.JWTConfig{Issuer: testIssuer},
		publicKey: &key.PublicKey,
		blacklist: bl,
	}

	player, err := v.ValidateToken(context.Background(), signToken(t, key, validClaims()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if player.ID != "42" || player.Username != "ada" || player.Permissions != 3 {
		t.Fatalf("unexpected player %+v", player)
	}

	hmac, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hmac token: %v", err)
	}

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"wrong key", signToken(t, other, validClaims()), ErrTokenInvalid},
		{"hmac", hmac, ErrTokenInvalid},
		{"garbage", "not.a.token", ErrTokenInvalid},
		{"wrong issuer", signToken(t, key, func() *Claims {
			c := validClaims()
			c.Issuer = "someone-else"
			return c
		}()), ErrTokenInvalid},
		{"expired", signToken(t, key, func() *Claims {
			c := validClaims()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
			return c
		}()), ErrTokenInvalid},
		{"no expiry", signToken(t, key, func() *Claims {
			c := validClaims()
			c.ExpiresAt = nil
			return c
		}()), ErrTokenInvalid},
		{"inactive", signToken(t, key, func() *Claims {
			c := validClaims()
			c.Activated = 0
			return c
		}()), ErrUserInactive},
		{"banned", signToken(t, key, func() *Claims {
			c := validClaims()
			c.Activated = -1
			return c
		}()), ErrUserBanned},
		{"blacklisted", signToken(t, key, func() *Claims {
			c := validClaims()
			c.UserID = 7
			return c
		}()), ErrTokenBlacklisted},
	}
	for _, tc := range cases {
		if _, err := v.ValidateToken(context.Background(), tc.token); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestValidateTokenBlacklistDown(t *testing.T) {
	key := newTestKey(t)
	v := &JWTValidator{
		config:    config.JWTConfig{Issuer: testIssuer},
		publicKey: &key.PublicKey,
		blacklist: &fakeBlacklist{err: errors.New("connection refused")},
	}
	if _, err := v.ValidateToken(context.Background(), signToken(t, key, validClaims())); err != nil {
		t.Fatalf("expected token accepted while blacklist is unreachable, got %v", err)
	}
}

func TestNewJWTValidatorFetchesKey(t *testing.T) {
	key := newTestKey(t)
	ts := serveKey(t, key)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v, err := NewJWTValidator(ctx, config.JWTConfig{
		Issuer:              testIssuer,
		PublicKeyURL:        ts.URL,
		PublicKeyRefreshHrs: 24,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := v.ValidateToken(ctx, signToken(t, key, validClaims())); err != nil {
		t.Fatalf("expected fetched key to verify token, got %v", err)
	}
}

func TestNewJWTValidatorKeyErrors(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	bodies := map[string][]byte{
		"not pem": []byte("hello"),
		"rsa":     publicKeyPEM(t, &rsaKey.PublicKey),
	}
	for name, body := range bodies {
		body := body
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(body)
		}))
		_, err := NewJWTValidator(context.Background(), config.JWTConfig{PublicKeyURL: ts.URL}, nil)
		ts.Close()
		if err == nil {
			t.Fatalf("%s: expected key error", name)
		}
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()
	if _, err := NewJWTValidator(context.Background(), config.JWTConfig{PublicKeyURL: ts.URL}, nil); err == nil {
		t.Fatalf("expected error for non-200 key endpoint")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	cases := []struct {
		name   string
		target string
		header map[string]string
		want   string
	}{
		{"subprotocol", "/ws", map[string]string{"Sec-WebSocket-Protocol": "access_token, abc"}, "abc"},
		{"bearer", "/ws", map[string]string{"Authorization": "Bearer def"}, "def"},
		{"query", "/ws?token=ghi", nil, "ghi"},
		{"other subprotocol", "/ws", map[string]string{"Sec-WebSocket-Protocol": "chat"}, ""},
		{"none", "/ws", nil, ""},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, tc.target, nil)
		for k, v := range tc.header {
			r.Header.Set(k, v)
		}
		if got := extractTokenFromHeader(r); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
