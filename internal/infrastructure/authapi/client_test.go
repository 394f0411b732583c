package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitacare/clinic-ops/internal/core/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, zerolog.Nop())
}

func TestClient_Login_Success(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad body: %v", err)
		}
		if req.Username != "ana" || req.Password != "s3cret" {
			t.Errorf("unexpected credentials: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(loginResponse{
			User:         &domain.User{Username: "ana", RoleCode: domain.RoleCodeReceptionist},
			AccessToken:  "acc",
			RefreshToken: "ref",
		})
	})

	creds, err := client.Login(context.Background(), "ana", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !creds.Complete() || creds.User.Username != "ana" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func TestClient_Login_Rejected(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
	})

	_, err := client.Login(context.Background(), "ana", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestClient_Login_ServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Login(context.Background(), "ana", "s3cret")
	if !errors.Is(err, domain.ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}
}

func TestClient_Refresh(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != "ref-1" {
			http.Error(w, `{"error":"session expired"}`, http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(refreshResponse{AccessToken: "acc-2", RefreshToken: "ref-2"})
	})

	access, refresh, err := client.Refresh(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if access != "acc-2" || refresh != "ref-2" {
		t.Fatalf("unexpected tokens: %q %q", access, refresh)
	}

	if _, _, err := client.Refresh(context.Background(), "spent"); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestClient_CurrentUser(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc-1" {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(userResponse{User: &domain.User{Username: "ana", RoleCode: domain.RoleCodeAdmin}})
	})

	user, err := client.CurrentUser(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("current user failed: %v", err)
	}
	if user.Role() != domain.RoleAdmin {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := client.CurrentUser(context.Background(), "bad"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond, zerolog.Nop())

	if _, err := client.Login(context.Background(), "ana", "s3cret"); !errors.Is(err, domain.ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}
	// Logout failures are also plain network errors; the caller ignores them.
	if err := client.Logout(context.Background(), "ref"); !errors.Is(err, domain.ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}
}
