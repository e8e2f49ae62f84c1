package response

import (
	"queueroom/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SuccessResponse представляет успешный ответ API
type SuccessResponse struct {
	Message string `json:"message" example:"Successfully left the queue \"Office hours\"."`
}

// DataResponse is a success message with a payload.
type DataResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой API
type ErrorResponse struct {
	// Код ошибки для программной обработки
	// example: RESOURCE_UNAVAILABLE
	Code string `json:"code"`

	// Человекочитаемое сообщение об ошибке
	// example: The requested queue is out of capacity.
	Message string `json:"message"`

	// Дополнительные детали об ошибке (опционально)
	// example: field "email" must be a valid email address
	Details string `json:"details,omitempty"`
}

// TokenResponse представляет ответ с токенами авторизации
type TokenResponse struct {
	// JWT токен для доступа к защищенным эндпоинтам
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`

	// JWT токен для обновления access токена
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refresh_token"`
}

// Error renders err and aborts the request. Only the kind and the
// client-facing message are rendered; internal causes are logged.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.StatusOf(err)
	if kind == apperr.Internal {
		log.Error().Err(err).
			Str("module", "http").
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    string(kind),
		Message: apperr.MessageOf(err),
	})
}

// BindError renders a request binding failure.
func BindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.HTTPStatus(apperr.InvalidInput), ErrorResponse{
		Code:    string(apperr.InvalidInput),
		Message: "Invalid request body.",
		Details: err.Error(),
	})
}
