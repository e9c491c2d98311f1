package http

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/auth"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/catalog"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/lending"
)

// AuthTemplateData holds authentication info for templates.
// Templates access it via .Auth in the page data.
type AuthTemplateData struct {
	LoggedIn  bool
	Name      string
	IsStaff   bool // Librarians, admins and superusers
	IsAdmin   bool
	CSRFField template.HTML
}

// getAuthTemplateData builds the auth block from the request context.
func getAuthTemplateData(c *gin.Context) AuthTemplateData {
	data := AuthTemplateData{
		CSRFField: template.HTML(auth.CSRFTokenField(c)),
	}

	user, ok := auth.CurrentUser(c)
	if !ok {
		return data
	}

	data.LoggedIn = true
	data.Name = user.FullName()
	data.IsStaff = user.Role != entities.UserRoleStudent || user.Superuser
	data.IsAdmin = user.IsAdmin()
	return data
}

// actorFrom converts the authenticated user into a lending actor.
func actorFrom(user *entities.User) lending.Actor {
	return lending.Actor{
		UserID:    user.ID,
		Role:      user.Role,
		Superuser: user.Superuser,
	}
}

// mustUser returns the authenticated user or aborts with a redirect to
// the login page. The auth middleware guarantees it is present on
// protected routes.
func mustUser(c *gin.Context) (*entities.User, bool) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return nil, false
	}
	return user, true
}

// parseIDParam parses the :id path parameter.
func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// render wraps c.HTML, merging the auth block and any pending flash
// message into the page data.
func render(c *gin.Context, sm *auth.SessionManager, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Auth"] = getAuthTemplateData(c)
	if sm != nil {
		data["Flash"] = sm.PopFlash(c.Request)
	}
	if _, ok := data["Query"]; !ok {
		data["Query"] = c.Query("q")
	}
	c.HTML(status, name, data)
}

// respondInternalError logs the error and renders a plain 500 page.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("internal error (%s): %v", context, err)
	c.String(http.StatusInternalServerError, "Erro interno do servidor")
}

// fieldErrorsOf unwraps catalog validation errors for re-rendering a
// form with inline messages.
func fieldErrorsOf(err error) (catalog.FieldErrors, bool) {
	var fe catalog.FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
