package document

import (
	"net/http"

	"gosshub/internal/errors"
	"gosshub/internal/middleware"
	"gosshub/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateInput
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	doc, err := h.service.Create(c.Request.Context(), middleware.Actor(c), form)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), c.Query("q"), utils.GetPage(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Show(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) AddRevision(c *gin.Context) {
	var form RevisionInput
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	rev, err := h.service.AddRevision(c.Request.Context(), middleware.Actor(c), c.Param("id"), form)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rev)
}

func (h *Handler) Update(c *gin.Context) {
	var form UpdateInput
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	if err := h.service.Update(c.Request.Context(), middleware.Actor(c), c.Param("id"), form); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Document edited.",
	})
}
