package handlers

import (
	"net/http"

	"queueroom/internal/apperr"
	"queueroom/internal/auth"
	"queueroom/internal/response"
	"queueroom/internal/rooms"
	"queueroom/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler держит зависимости HTTP-обработчиков.
type Handler struct {
	store    storage.Store
	tokens   *auth.Tokens
	resolver *auth.Resolver
	rooms    *rooms.Service
}

func New(store storage.Store, tokens *auth.Tokens, resolver *auth.Resolver, svc *rooms.Service) *Handler {
	return &Handler{store: store, tokens: tokens, resolver: resolver, rooms: svc}
}

// identity must only be used behind auth.AuthMiddleware.
func identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Error(c, apperr.New(apperr.Unauthorized, "Missing user credentials."))
	}
	return id, ok
}

// Echo godoc
// @Summary		Проверка доступности
// @Tags			health
// @Produce		plain
// @Success		200	{string}	string	"OK"
// @Router			/api/v1/echo [get]
func (h *Handler) Echo(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
