package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetPage reads the 1-indexed page query parameter.
func GetPage(c *gin.Context) int {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	return page
}

// ParamUint parses a positive integer path or body reference.
func ParamUint(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
