package auth

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/toolshed/internal/database/users"
	"github.com/mrlokans/toolshed/internal/entities"
)

// User-facing messages. The wrong-credentials message is shared by the
// unknown-email and failed-verify paths on purpose: the two rejections must
// be byte-identical so accounts cannot be enumerated.
const (
	msgEmailRequired    = "Please provide your E-Mail."
	msgEmailTaken       = "E-Mail already taken."
	msgDuplicateUser    = "Username or E-Mail already in use."
	msgWrongCredentials = "Wrong credentials."
	msgServerError      = "Something went wrong. Please try again."
)

// ToolLister provides the tool catalog for the signup form.
type ToolLister interface {
	ListAll() ([]entities.Tool, error)
}

// isLocalPath validates that a redirect path is local to prevent open
// redirect attacks.
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	// Reject protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") {
		return false
	}
	if strings.Contains(path, "\\") {
		return false
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/".
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// Controller handles the authentication HTTP endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
	tools          ToolLister
	templates      *template.Template
}

// NewController creates the authentication controller. Templates are loaded
// from <templatesPath>/auth/*.html; when none exist the controller falls
// back to JSON responses.
func NewController(service *Service, sessionManager *SessionManager, toolLister ToolLister, templatesPath string) *Controller {
	pattern := filepath.Join(templatesPath, "auth", "*.html")
	tmpl, err := template.ParseGlob(pattern)
	if err != nil {
		tmpl = nil
	}

	return &Controller{
		service:        service,
		sessionManager: sessionManager,
		tools:          toolLister,
		templates:      tmpl,
	}
}

// RegisterRoutes registers the authentication routes with their access
// gates: signup and login are reachable only while logged out, logout only
// while logged in.
func (ac *Controller) RegisterRoutes(router *gin.Engine, mw *Middleware) {
	guest := mw.RequireGuest()
	router.GET("/signup", guest, ac.SignupPage)
	router.POST("/signup", guest, ac.Signup)
	router.GET("/login", guest, ac.LoginPage)
	router.POST("/login", guest, ac.Login)

	authed := mw.RequireAuth()
	router.GET("/logout", authed, ac.Logout)
	router.POST("/logout", authed, ac.Logout) // Support POST for logout forms
}

// SignupPage renders the signup form with the tool catalog.
func (ac *Controller) SignupPage(c *gin.Context) {
	toolList, err := ac.tools.ListAll()
	if err != nil {
		ac.renderSignup(c, http.StatusInternalServerError, nil, gin.H{
			"Error": msgServerError,
		})
		return
	}

	ac.renderSignup(c, http.StatusOK, toolList, gin.H{})
}

// Signup handles the signup form submission. Validation, uniqueness and
// infrastructure failures are all rendered inline on the form.
func (ac *Controller) Signup(c *gin.Context) {
	input := SignupInput{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
		ToolIDs:  parseToolIDs(c.PostFormArray("toolsAvailable")),
	}

	user, err := ac.service.SignUp(input)
	if err != nil {
		status, msg := ac.signupError(err)
		ac.renderSignup(c, status, ac.toolListOrNil(), gin.H{
			"Error":    msg,
			"Username": input.Username,
			"Email":    input.Email,
		})
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		ac.renderSignup(c, http.StatusInternalServerError, ac.toolListOrNil(), gin.H{
			"Error":    msgServerError,
			"Username": input.Username,
			"Email":    input.Email,
		})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// signupError maps a signup failure to a status code and inline message.
func (ac *Controller) signupError(err error) (int, string) {
	var validationErr *users.ValidationError

	switch {
	case errors.Is(err, ErrEmailRequired):
		return http.StatusBadRequest, msgEmailRequired
	case errors.Is(err, ErrPasswordTooShort):
		return http.StatusBadRequest, fmt.Sprintf(
			"Your password needs to be at least %d characters long.",
			ac.service.MinPasswordLength())
	case errors.Is(err, ErrEmailTaken):
		return http.StatusBadRequest, msgEmailTaken
	case errors.Is(err, users.ErrDuplicateUser):
		// Lost the insert race against a concurrent signup
		return http.StatusBadRequest, msgDuplicateUser
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	default:
		return http.StatusInternalServerError, msgServerError
	}
}

// LoginPage renders the login form.
func (ac *Controller) LoginPage(c *gin.Context) {
	ac.renderLogin(c, http.StatusOK, gin.H{
		"Next":  sanitizeRedirectPath(c.Query("next")),
		"Error": c.Query("error"),
	})
}

// Login handles the login form submission. Credential rejections render
// inline; unexpected failures are handed to the centralized error handler
// instead (unlike signup, which renders everything inline).
func (ac *Controller) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))

	user, err := ac.service.LogIn(email, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailRequired):
			ac.renderLogin(c, http.StatusBadRequest, gin.H{
				"Error": msgEmailRequired,
				"Next":  next,
			})
		case errors.Is(err, ErrPasswordTooShort):
			ac.renderLogin(c, http.StatusBadRequest, gin.H{
				"Error": fmt.Sprintf("Your password needs to be at least %d characters long.",
					ac.service.MinPasswordLength()),
				"Next": next,
			})
		case errors.Is(err, ErrWrongCredentials):
			ac.renderLogin(c, http.StatusBadRequest, gin.H{
				"Error": msgWrongCredentials,
				"Next":  next,
				"Email": email,
			})
		default:
			_ = c.Error(err)
			c.Abort()
		}
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session and redirects to the login page.
func (ac *Controller) Logout(c *gin.Context) {
	_ = ac.sessionManager.DestroySession(c.Request)
	c.Redirect(http.StatusFound, "/login")
}

func (ac *Controller) toolListOrNil() []entities.Tool {
	toolList, err := ac.tools.ListAll()
	if err != nil {
		return nil
	}
	return toolList
}

func (ac *Controller) renderSignup(c *gin.Context, status int, toolList []entities.Tool, data gin.H) {
	data["Title"] = "Sign up"
	data["Tools"] = toolList
	data["CSRFToken"] = GetCSRFToken(c)
	ac.renderTemplate(c, status, "signup.html", data)
}

func (ac *Controller) renderLogin(c *gin.Context, status int, data gin.H) {
	data["Title"] = "Login"
	data["CSRFToken"] = GetCSRFToken(c)
	ac.renderTemplate(c, status, "login.html", data)
}

// renderTemplate renders an auth template or falls back to JSON.
func (ac *Controller) renderTemplate(c *gin.Context, status int, name string, data gin.H) {
	if ac.templates == nil {
		c.JSON(status, data)
		return
	}

	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := ac.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		c.String(http.StatusInternalServerError, "Template error: %v", err)
	}
}

// parseToolIDs converts the multi-select form values into tool IDs,
// skipping anything that is not a number.
func parseToolIDs(values []string) []uint {
	ids := make([]uint, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}
