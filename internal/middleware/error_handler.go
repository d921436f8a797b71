package middleware

import (
	"errors"

	apiError "gosshub/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next() // Execute the handler first

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *apiError.APIError
		if !errors.As(err, &apiErr) {
			// a raw error we didn't wrap is internal
			apiErr = apiError.Internal(err)
		}

		if apiErr.Status >= 500 {
			log.Error().Err(apiErr.Internal).Str("path", c.Request.URL.Path).Msg(apiErr.Message)
		} else {
			log.Info().Err(apiErr.Internal).Str("path", c.Request.URL.Path).Msg(apiErr.Message)
		}

		c.AbortWithStatusJSON(apiErr.Status, apiErr)
	}
}
