package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/walletsvc/wallet_service/internal/config"
	"github.com/walletsvc/wallet_service/internal/logging"
)

func TestNewServesPingInDevelopment(t *testing.T) {
	cfg := config.Config{AppName: "wallet-test", AppEnv: "development", Port: "0", JWTSecret: "s"}
	srv, err := New(cfg, nil, nil, logging.Discard())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}

func TestNewRejectsProductionWithoutStores(t *testing.T) {
	cfg := config.Config{AppEnv: "production", JWTSecret: "s"}
	if _, err := New(cfg, nil, nil, logging.Discard()); err == nil {
		t.Fatal("expected error without database")
	}
}
