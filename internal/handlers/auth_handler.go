package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/celprep/practice-service/internal/services"
	"github.com/celprep/practice-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// SignUp registers a new learner account
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req services.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Signing up user", "email", req.Email)

	user, err := h.authService.SignUp(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Account created",
		Data:    user,
	})
}

// SignIn exchanges mock credentials for a session token
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req services.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Signing in user", "email", req.Email)

	result, err := h.authService.SignIn(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SignOut discards the signed-in-user record
func (h *AuthHandler) SignOut(c *gin.Context) {
	token, _ := c.Get("auth_token")
	if err := h.authService.SignOut(c.Request.Context(), token.(string)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Signed out"})
}

// SignOutAll force-signs out every account (admin only)
func (h *AuthHandler) SignOutAll(c *gin.Context) {
	h.LogRequest(c, "Signing out all users")

	if err := h.authService.SignOutAll(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "All sessions invalidated"})
}

// CurrentUser returns the account behind the presented token
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	token, _ := c.Get("auth_token")
	user, err := h.authService.CurrentUser(c.Request.Context(), token.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
