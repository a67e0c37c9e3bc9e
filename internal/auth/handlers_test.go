package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/mrlokans/toolshed/internal/entities"
)

// authPageBody is the JSON fallback shape rendered when no templates are
// configured.
type authPageBody struct {
	Error string `json:"Error"`
}

func decodePageBody(t *testing.T, w *httptest.ResponseRecorder) authPageBody {
	t.Helper()
	var body authPageBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestSignupHandler(t *testing.T) {
	env := setupAuthRouter(t)

	// First signup succeeds and starts a session.
	w := env.postForm("/signup", signupForm("alice", "alice@example.com", "s3cretpw"), "")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusFound, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Fatalf("redirect = %q, want %q", loc, "/")
	}
	if sessionToken(t, w) == "" {
		t.Fatal("signup did not set a session cookie")
	}

	// Re-submitting the same email from a fresh browser is rejected
	// inline with the taken-email message.
	w = env.postForm("/signup", signupForm("alice2", "alice@example.com", "s3cretpw"), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if body := decodePageBody(t, w); body.Error != "E-Mail already taken." {
		t.Errorf("Error = %q, want %q", body.Error, "E-Mail already taken.")
	}
}

func TestSignupHandler_InlineErrors(t *testing.T) {
	tests := []struct {
		name      string
		form      url.Values
		wantError string
	}{
		{
			name:      "missing email",
			form:      signupForm("alice", "", "s3cretpw"),
			wantError: "Please provide your E-Mail.",
		},
		{
			name:      "short password",
			form:      signupForm("alice", "alice@example.com", "short"),
			wantError: "Your password needs to be at least 8 characters long.",
		},
		{
			name:      "missing username",
			form:      signupForm("", "alice@example.com", "s3cretpw"),
			wantError: "Username is required.",
		},
		{
			name:      "malformed email",
			form:      signupForm("alice", "not-an-address", "s3cretpw"),
			wantError: "E-Mail address is not valid.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupAuthRouter(t)

			w := env.postForm("/signup", tt.form, "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if body := decodePageBody(t, w); body.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}

func TestLoginHandler_RejectionsAreByteIdentical(t *testing.T) {
	env := setupAuthRouter(t)

	w := env.postForm("/signup", signupForm("alice", "alice@example.com", "s3cretpw"), "")
	if w.Code != http.StatusFound {
		t.Fatalf("signup status = %d, want %d", w.Code, http.StatusFound)
	}

	unknown := env.postForm("/login", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"whateverpw"},
	}, "")
	mismatch := env.postForm("/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrongpassword"},
	}, "")

	if unknown.Code != http.StatusBadRequest || mismatch.Code != http.StatusBadRequest {
		t.Fatalf("statuses = %d / %d, want both %d", unknown.Code, mismatch.Code, http.StatusBadRequest)
	}

	unknownBody := decodePageBody(t, unknown)
	mismatchBody := decodePageBody(t, mismatch)
	if unknownBody.Error != "Wrong credentials." {
		t.Errorf("Error = %q, want %q", unknownBody.Error, "Wrong credentials.")
	}
	if !reflect.DeepEqual(unknownBody, mismatchBody) {
		t.Errorf("unknown-email and wrong-password rejections differ: %+v vs %+v", unknownBody, mismatchBody)
	}
}

func TestLoginHandler_RedirectsToNext(t *testing.T) {
	env := setupAuthRouter(t)

	w := env.postForm("/signup", signupForm("alice", "alice@example.com", "s3cretpw"), "")
	env.get("/logout", sessionToken(t, w))

	tests := []struct {
		name     string
		next     string
		wantLoc  string
	}{
		{name: "local path", next: "/protected", wantLoc: "/protected"},
		{name: "absolute url rejected", next: "https://evil.example.com/", wantLoc: "/"},
		{name: "protocol-relative rejected", next: "//evil.example.com", wantLoc: "/"},
		{name: "empty defaults to root", next: "", wantLoc: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.postForm("/login", url.Values{
				"email":    {"alice@example.com"},
				"password": {"s3cretpw"},
				"next":     {tt.next},
			}, "")
			if w.Code != http.StatusFound {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusFound, w.Body.String())
			}
			if loc := w.Header().Get("Location"); loc != tt.wantLoc {
				t.Errorf("redirect = %q, want %q", loc, tt.wantLoc)
			}
			// Each successful login leaves a session behind; drop it so
			// the next case starts logged out.
			env.get("/logout", sessionToken(t, w))
		})
	}
}

func TestLoginPage_EchoesSanitizedNext(t *testing.T) {
	env := setupAuthRouter(t)

	w := env.get("/login?next=//evil.example.com", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if strings.Contains(w.Body.String(), "evil.example.com") {
		t.Errorf("body echoes unsanitized next: %s", w.Body.String())
	}
}

func TestSignupPage_ListsTools(t *testing.T) {
	env := setupAuthRouter(t)

	hammer := entities.Tool{Name: "hammer", Description: "Claw hammer"}
	if err := env.db.Create(&hammer).Error; err != nil {
		t.Fatalf("Failed to seed tool: %v", err)
	}

	w := env.get("/signup", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "hammer") {
		t.Errorf("body = %s, want hammer in tool list", w.Body.String())
	}
}

func TestIsLocalPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/protected", true},
		{"/a/b?c=d", true},
		{"", false},
		{"relative", false},
		{"//evil.example.com", false},
		{"https://evil.example.com", false},
		{"/\\evil", false},
	}

	for _, tt := range tests {
		if got := isLocalPath(tt.path); got != tt.want {
			t.Errorf("isLocalPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParseToolIDs(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []uint
	}{
		{name: "valid ids", values: []string{"1", "42"}, want: []uint{1, 42}},
		{name: "junk skipped", values: []string{"1", "abc", "-2", "3"}, want: []uint{1, 3}},
		{name: "empty", values: nil, want: []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseToolIDs(tt.values)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseToolIDs(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}
