package handlers

import (
	"net/http"

	"queueroom/internal/response"

	"github.com/gin-gonic/gin"
)

// UserRooms godoc
// @Summary		Получение списка своих комнат
// @Tags			profile
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		models.QueueRoom		"Комнаты, которыми владеет пользователь"
// @Failure		401	{object}	response.ErrorResponse	"Нет доступа (UNAUTHORIZED)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (INTERNAL)"
// @Router			/api/v1/profile/rooms [get]
func (h *Handler) UserRooms(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.rooms.UserRooms(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UserQueues godoc
// @Summary		Получение списка своих очередей
// @Description	Получение списка очередей, в которых пользователь участвует
// @Tags			profile
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		rooms.UserQueueItem		"Очереди пользователя"
// @Failure		401	{object}	response.ErrorResponse	"Нет доступа (UNAUTHORIZED)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (INTERNAL)"
// @Router			/api/v1/profile/queues [get]
func (h *Handler) UserQueues(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	items, err := h.rooms.UserQueues(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
