package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// PATs issued by GitHub carry a fixed prefix.
		v.RegisterValidation("pat", func(fl validator.FieldLevel) bool {
			return strings.HasPrefix(fl.Field().String(), "ghp_")
		})
	}
}

// Authenticator exchanges a username and PAT for a session token,
// implemented by services.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, username, pat string) (string, error)
}

type AuthHandler struct {
	authService Authenticator
}

func NewAuthHandler(authService Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type authenticateRequest struct {
	Username string `json:"username" binding:"required"`
	PAT      string `json:"pat" binding:"required,pat"`
}

// Authenticate verifies the submitted credential against GitHub and returns
// a bearer token for the protected routes.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var request authenticateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and a ghp_ personal access token are required"})
		return
	}

	token, err := h.authService.Authenticate(c.Request.Context(), request.Username, request.PAT)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// respondAuthError keeps credential failures distinguishable from input
// mistakes without leaking upstream details.
func respondAuthError(c *gin.Context, err error) {
	if isValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "could not verify credentials"})
}
