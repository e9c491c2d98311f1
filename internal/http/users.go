package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/auth"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/users"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

// UsersController handles the admin account screens.
type UsersController struct {
	service  *auth.Service
	users    *users.Repository
	sessions *auth.SessionManager
}

// NewUsersController creates a new UsersController.
func NewUsersController(service *auth.Service, repo *users.Repository, sm *auth.SessionManager) *UsersController {
	return &UsersController{
		service:  service,
		users:    repo,
		sessions: sm,
	}
}

// Index renders the searchable account list with totals.
func (uc *UsersController) Index(c *gin.Context) {
	query := c.Query("q")

	list, err := uc.users.ListUsers(query)
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}

	stats, err := uc.users.GetUserStats()
	if err != nil {
		respondInternalError(c, err, "user stats")
		return
	}

	render(c, uc.sessions, http.StatusOK, "user_list", gin.H{
		"Users": list,
		"Stats": stats,
	})
}

// AddPage renders the new-account form.
func (uc *UsersController) AddPage(c *gin.Context) {
	render(c, uc.sessions, http.StatusOK, "user_form", gin.H{
		"Title":  "Adicionar usuário",
		"Action": "/usuarios/adicionar",
		"Form":   auth.CreateUserInput{Active: true},
		"Roles":  entities.AllRoles(),
	})
}

// Add creates an account with any role.
func (uc *UsersController) Add(c *gin.Context) {
	in := auth.CreateUserInput{
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Email:     c.PostForm("email"),
		Matricula: c.PostForm("matricula"),
		Password:  c.PostForm("password"),
		Role:      entities.UserRole(c.PostForm("role")),
		Superuser: c.PostForm("superuser") == "on",
		Active:    c.PostForm("active") == "on",
	}

	if _, err := uc.service.CreateUser(in); err != nil {
		render(c, uc.sessions, http.StatusUnprocessableEntity, "user_form", gin.H{
			"Title":  "Adicionar usuário",
			"Action": "/usuarios/adicionar",
			"Form":   in,
			"Roles":  entities.AllRoles(),
			"Error":  registerErrorMessage(err),
		})
		return
	}

	uc.sessions.Flash(c.Request, "Usuário criado com sucesso.")
	c.Redirect(http.StatusFound, "/usuarios")
}

// EditPage renders the account edit form.
func (uc *UsersController) EditPage(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.String(http.StatusNotFound, "Usuário não encontrado")
		return
	}

	user, err := uc.users.GetUserByID(id)
	if err != nil {
		c.String(http.StatusNotFound, "Usuário não encontrado")
		return
	}

	form := auth.UpdateUserInput{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Matricula: user.Matricula,
		Role:      user.Role,
		Superuser: user.Superuser,
		Active:    user.Active,
	}

	render(c, uc.sessions, http.StatusOK, "user_form", gin.H{
		"Title":  "Editar usuário",
		"Action": "/usuarios/editar/" + strconv.FormatUint(uint64(id), 10),
		"Form":   form,
		"Roles":  entities.AllRoles(),
	})
}

// Edit updates an account. An empty password keeps the current one.
func (uc *UsersController) Edit(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.String(http.StatusNotFound, "Usuário não encontrado")
		return
	}

	in := auth.UpdateUserInput{
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Email:     c.PostForm("email"),
		Matricula: c.PostForm("matricula"),
		Password:  c.PostForm("password"),
		Role:      entities.UserRole(c.PostForm("role")),
		Superuser: c.PostForm("superuser") == "on",
		Active:    c.PostForm("active") == "on",
	}

	if _, err := uc.service.UpdateUser(id, in); err != nil {
		render(c, uc.sessions, http.StatusUnprocessableEntity, "user_form", gin.H{
			"Title":  "Editar usuário",
			"Action": "/usuarios/editar/" + strconv.FormatUint(uint64(id), 10),
			"Form":   in,
			"Roles":  entities.AllRoles(),
			"Error":  registerErrorMessage(err),
		})
		return
	}

	uc.sessions.Flash(c.Request, "Usuário atualizado com sucesso.")
	c.Redirect(http.StatusFound, "/usuarios")
}
