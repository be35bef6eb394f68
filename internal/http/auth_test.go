package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"shopmart/internal/repos"
)

// Seeded passwords are stored hashed, never plaintext.
func TestPasswordsSeededAreHashed(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var hashes []string
	if err := db.Select(&hashes, `SELECT password FROM users`); err != nil {
		t.Fatalf("select hashes: %v", err)
	}
	if len(hashes) == 0 {
		t.Fatal("no users seeded")
	}
	for _, h := range hashes {
		if strings.Contains(h, "Passw0rd!") {
			t.Fatalf("hash contains plaintext password")
		}
		if !strings.HasPrefix(h, "$2") {
			t.Fatalf("unexpected hash format: %s", h)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte("Passw0rd!")); err != nil {
			t.Fatalf("seed hash does not validate known password: %v", err)
		}
	}
}

func TestLoginSuccessAndFailure(t *testing.T) {
	app, _, _ := newApp(t)

	respForm, _ := app.Test(httptest.NewRequest("GET", "/login", nil))
	csrfTok := cookieValue(respForm, "csrf_")
	if csrfTok == "" {
		t.Fatal("csrf token missing")
	}

	post := func(body string) *http.Response {
		req := httptest.NewRequest("POST", "/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	// Wrong password -> 401
	respBad := post("csrf=" + csrfTok + "&email=alice@shopmart.test&password=wrongpass!")
	if respBad.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", respBad.StatusCode)
	}

	// Unknown email behaves the same as a wrong password
	respUnknown := post("csrf=" + csrfTok + "&email=ghost@shopmart.test&password=Passw0rd!")
	if respUnknown.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", respUnknown.StatusCode)
	}

	// Good credentials -> redirect to the storefront
	respGood := post("csrf=" + csrfTok + "&email=alice@shopmart.test&password=Passw0rd!")
	if respGood.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on success, got %d", respGood.StatusCode)
	}
	if loc := respGood.Header.Get("Location"); loc != "/shopping" {
		t.Fatalf("shopper should land on /shopping, got %q", loc)
	}

	// Admin lands on the dashboard
	respAdmin := post("csrf=" + csrfTok + "&email=admin@shopmart.test&password=Passw0rd!")
	if loc := respAdmin.Header.Get("Location"); loc != "/admin" {
		t.Fatalf("admin should land on /admin, got %q", loc)
	}
}

func TestDeactivatedAccountCannotLogin(t *testing.T) {
	app, db, userRepo := newApp(t)
	bob := seededUserID(t, db, "bob@shopmart.test")
	if _, err := userRepo.Deactivate(bob); err != nil {
		t.Fatal(err)
	}

	respForm, _ := app.Test(httptest.NewRequest("GET", "/login", nil))
	csrfTok := cookieValue(respForm, "csrf_")

	form := strings.NewReader("csrf=" + csrfTok + "&email=bob@shopmart.test&password=Passw0rd!")
	req := httptest.NewRequest("POST", "/login", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deactivated account, got %d", resp.StatusCode)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	app, _, _ := newApp(t)

	respForm, _ := app.Test(httptest.NewRequest("GET", "/register", nil))
	csrfTok := cookieValue(respForm, "csrf_")

	cases := []struct {
		name, body string
	}{
		{"missing fields", "username=x"},
		{"bad email", "username=carol&email=notanemail&password=Passw0rd!&address=1 St&contact=555"},
		{"short password", "username=carol&email=carol@shopmart.test&password=abc&address=1 St&contact=555"},
	}
	for _, tc := range cases {
		form := strings.NewReader("csrf=" + csrfTok + "&" + tc.body)
		req := httptest.NewRequest("POST", "/register", form)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, resp.StatusCode)
		}
	}
}
