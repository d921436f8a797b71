package activity

import (
	"net/http"

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

func (h *Handler) List(c *gin.Context) {
	result, err := h.service.ListVisibleTo(c.Request.Context(), middleware.Actor(c), utils.GetPage(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
