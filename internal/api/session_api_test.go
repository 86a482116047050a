package api

import (
	"net/http"
	"testing"
)

func TestSession_RegisterLoginLogout(t *testing.T) {
	srv := setupTestServer(t)

	w := srv.do(t, http.MethodPost, "/session/register", map[string]string{
		"email":    "a@x.com",
		"password": "secret",
		"name":     "Alice",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}

	// Registration signs the account in.
	w = srv.do(t, http.MethodGet, "/session", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("current user status = %d", w.Code)
	}
	user := decodeBody(t, w)["user"].(map[string]any)
	if user["email"] != "a@x.com" {
		t.Errorf("email = %q", user["email"])
	}

	w = srv.do(t, http.MethodPost, "/session/logout", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}

	w = srv.do(t, http.MethodGet, "/session", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("after logout status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// Wrong password carries the Firebase-style code.
	w = srv.do(t, http.MethodPost, "/session/login", map[string]string{
		"email":    "a@x.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", w.Code)
	}
	if body := decodeBody(t, w); body["code"] != "auth/wrong-password" {
		t.Errorf("code = %q", body["code"])
	}

	w = srv.do(t, http.MethodPost, "/session/login", map[string]string{
		"email":    "a@x.com",
		"password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
}

func TestSession_DuplicateRegister(t *testing.T) {
	srv := setupTestServer(t)
	payload := map[string]string{"email": "a@x.com", "password": "secret", "name": "Alice"}

	if w := srv.do(t, http.MethodPost, "/session/register", payload); w.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", w.Code)
	}

	w := srv.do(t, http.MethodPost, "/session/register", payload)
	if w.Code != http.StatusConflict {
		t.Fatalf("second register status = %d, want %d", w.Code, http.StatusConflict)
	}
	if body := decodeBody(t, w); body["code"] != "auth/email-already-in-use" {
		t.Errorf("code = %q", body["code"])
	}
}

func TestSession_ResetPassword(t *testing.T) {
	srv := setupTestServer(t)

	w := srv.do(t, http.MethodPost, "/session/reset-password", map[string]string{"email": "ghost@x.com"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if body := decodeBody(t, w); body["code"] != "auth/user-not-found" {
		t.Errorf("code = %q", body["code"])
	}

	srv.do(t, http.MethodPost, "/session/register", map[string]string{
		"email": "a@x.com", "password": "secret", "name": "Alice",
	})
	w = srv.do(t, http.MethodPost, "/session/reset-password", map[string]string{"email": "a@x.com"})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
