package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/toolshed/internal/entities"
)

func TestNewSessionManager_CreatesSessionsTable(t *testing.T) {
	env := setupAuthRouter(t)

	sqlDB, err := env.db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}

	var name string
	row := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='sessions'`)
	if err := row.Scan(&name); err != nil {
		t.Fatalf("sessions table missing: %v", err)
	}
}

func TestSessionManager_BindAndInspect(t *testing.T) {
	env := setupAuthRouter(t)
	user := &entities.User{ID: 7, Username: "alice", Email: "alice@example.com"}

	// Extra routes that poke the session manager directly.
	env.router.GET("/bind", func(c *gin.Context) {
		if err := env.sm.CreateSession(c.Request, user); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Status(http.StatusOK)
	})
	env.router.GET("/inspect", func(c *gin.Context) {
		data := env.sm.GetSessionData(c.Request)
		if data == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":       data.UserID,
			"username":      data.Username,
			"email":         data.Email,
			"authenticated": env.sm.IsAuthenticated(c.Request),
		})
	})
	env.router.GET("/unbind", func(c *gin.Context) {
		if err := env.sm.DestroySession(c.Request); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Status(http.StatusOK)
	})

	// Anonymous requests carry no session data.
	w := env.get("/inspect", "")
	if !containsBody(w, `"anonymous":true`) {
		t.Fatalf("anonymous inspect body = %s", w.Body.String())
	}

	w = env.get("/bind", "")
	if w.Code != http.StatusOK {
		t.Fatalf("bind status = %d", w.Code)
	}
	token := sessionToken(t, w)

	w = env.get("/inspect", token)
	for _, want := range []string{`"user_id":7`, `"username":"alice"`, `"email":"alice@example.com"`, `"authenticated":true`} {
		if !containsBody(w, want) {
			t.Errorf("inspect body = %s, want %s", w.Body.String(), want)
		}
	}

	// Destroy wipes the identity; the old token inspects as anonymous.
	w = env.get("/unbind", token)
	if w.Code != http.StatusOK {
		t.Fatalf("unbind status = %d", w.Code)
	}
	w = env.get("/inspect", token)
	if !containsBody(w, `"anonymous":true`) {
		t.Errorf("post-destroy inspect body = %s", w.Body.String())
	}
}

func TestSessionManager_CreateSessionRotatesToken(t *testing.T) {
	env := setupAuthRouter(t)
	user := &entities.User{ID: 7, Username: "alice", Email: "alice@example.com"}

	env.router.GET("/bind", func(c *gin.Context) {
		if err := env.sm.CreateSession(c.Request, user); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Status(http.StatusOK)
	})
	env.router.GET("/touch", func(c *gin.Context) {
		// Any Put marks the session modified so a cookie is issued.
		env.sm.Put(c.Request.Context(), "visited", time.Now())
		c.Status(http.StatusOK)
	})

	// Obtain an anonymous session token first.
	w := env.get("/touch", "")
	anonToken := sessionToken(t, w)

	// Binding an identity must discard the pre-auth token.
	w = env.get("/bind", anonToken)
	boundToken := sessionToken(t, w)
	if boundToken == anonToken {
		t.Error("CreateSession kept the pre-authentication token")
	}

	// The bound token carries the identity.
	env.router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": env.sm.GetUserID(c.Request)})
	})
	w = env.get("/whoami", boundToken)
	if !containsBody(w, `"user_id":7`) {
		t.Errorf("whoami body = %s, want user_id 7", w.Body.String())
	}
}

func containsBody(w *httptest.ResponseRecorder, substr string) bool {
	return strings.Contains(w.Body.String(), substr)
}
