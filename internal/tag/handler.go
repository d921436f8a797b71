package tag

import (
	"net/http"

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
	counts, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": counts})
}

func (h *Handler) Documents(c *gin.Context) {
	result, err := h.service.DocumentsForTag(c.Request.Context(), c.Param("name"), utils.GetPage(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
