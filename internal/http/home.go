package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/toolshed/internal/auth"
)

// HomeController renders the authenticated landing page.
type HomeController struct{}

func NewHomeController() *HomeController {
	return &HomeController{}
}

// HomePage shows the logged-in user and the tools they can lend. The route
// is behind RequireAuth, so the user is always present here.
func (h *HomeController) HomePage(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.HTML(http.StatusOK, "home", gin.H{
		"Title":    "Toolshed",
		"Username": user.Username,
		"Email":    user.Email,
		"Tools":    user.Tools,
	})
}
