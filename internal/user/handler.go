package user

import (
	"net/http"

	"gosshub/internal/errors"
	"gosshub/internal/middleware"
	"gosshub/internal/utils"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for users
type Handler struct {
	service Service
}

// NewHandler creates a new user handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register handles user registration
func (h *Handler) Register(c *gin.Context) {
	var form RegisterInput
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	if _, err := h.service.Register(c.Request.Context(), form); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "User created.",
	})
}

// Login handles user login
func (h *Handler) Login(c *gin.Context) {
	var form LoginInput
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	token, _, err := h.service.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout revokes the token the request was made with
func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.Claims(c)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Logged out.",
	})
}

// GetProfile handles getting the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor == nil {
		c.Error(errors.Unauthorized("Not authorized to access this API.", nil))
		return
	}

	c.JSON(http.StatusOK, actor)
}

func (h *Handler) SearchUsers(c *gin.Context) {
	users, err := h.service.Search(c.Request.Context(), c.Query("username"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// UpdateSelf edits the authenticated account.
func (h *Handler) UpdateSelf(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor == nil {
		c.Error(errors.Unauthorized("Not authorized to access this API.", nil))
		return
	}
	h.update(c, actor.ID)
}

// UpdateByID lets an admin edit any account.
func (h *Handler) UpdateByID(c *gin.Context) {
	id, ok := utils.ParamUint(c.Param("id"))
	if !ok {
		c.Error(errors.BadRequest("Invalid user id.", nil))
		return
	}
	h.update(c, id)
}

func (h *Handler) update(c *gin.Context, targetID uint64) {
	var form UpdateUser
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	user, err := h.service.Update(c.Request.Context(), middleware.Actor(c), targetID, form)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "User edited.",
		"user":    user,
	})
}

// Delete removes the authenticated account.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.Actor(c)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "User deleted.",
	})
}
