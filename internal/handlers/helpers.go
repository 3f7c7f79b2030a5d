package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "portfolio/internal/errors"
	"portfolio/internal/logger"
	"portfolio/internal/middleware"
	"portfolio/internal/uuid"
)

// ErrorResponse documents the error envelope for swagger.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// requestScope extracts the tenant and actor set by the auth middleware.
// Returns ErrUnauthorized when the request was not authenticated.
func requestScope(c *gin.Context) (tenantID, actorID string, err error) {
	tenant, exists := c.Get(middleware.ContextTenantID)
	if !exists {
		return "", "", apperrors.ErrUnauthorized
	}
	actor, _ := c.Get(middleware.ContextActorID)
	actorStr, _ := actor.(string)
	return tenant.(string), actorStr, nil
}

// parsePathUUID parses a uuid path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathUUID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}
