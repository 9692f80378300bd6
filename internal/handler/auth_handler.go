package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/session"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
	"github.com/noah-isme/attendance-dashboard/pkg/response"
)

// RegisterPayload is the sign-up form.
type RegisterPayload struct {
	Username       string `json:"username"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RetypePassword string `json:"retype_password"`
	AcceptTerms    bool   `json:"accept_terms"`
}

// SignInPayload carries a token issued by the backend.
type SignInPayload struct {
	Token string `json:"token"`
}

// AuthHandler exposes registration and the dashboard session.
type AuthHandler struct{}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Register godoc
// @Summary Register account
// @Description Create an account on the attendance backend
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body RegisterPayload true "Sign-up form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var payload RegisterPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid registration payload"))
		return
	}
	if !payload.AcceptTerms {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "You must agree to the Terms and Conditions."))
		return
	}

	err := ws.Auth.Register(c.Request.Context(), models.RegisterRequest{
		Username:       payload.Username,
		Name:           payload.Name,
		Email:          payload.Email,
		Password:       payload.Password,
		RetypePassword: payload.RetypePassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.WithAlert(c, http.StatusCreated, gin.H{"redirect": session.RouteSignIn},
		models.SuccessAlert("Registration successful. Please sign in."))
}

// SignIn godoc
// @Summary Sign in
// @Description Keep a backend-issued token as this session's credential
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body SignInPayload true "Token"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var payload SignInPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid sign-in payload"))
		return
	}
	identity, err := ws.Auth.SignIn(c.Request.Context(), payload.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, session.State{Status: session.StatusAuthenticated, Identity: &identity}, nil)
}

// SignOut godoc
// @Summary Sign out
// @Tags Auth
// @Success 204
// @Router /api/auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	if err := ws.Auth.SignOut(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Session state
// @Description Current gate status and decoded identity
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	state, err := ws.Auth.Me(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, state, nil)
}
