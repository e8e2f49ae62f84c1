package handlers

import (
	"fmt"
	"net/http"

	"queueroom/internal/auth"
	"queueroom/internal/models"
	"queueroom/internal/response"
	"queueroom/internal/rooms"

	"github.com/gin-gonic/gin"
)

type CreateRoomRequest struct {
	UserID      string                    `json:"user_id" binding:"required"`
	Emoji       string                    `json:"emoji"`
	Name        string                    `json:"name" binding:"required"`
	Host        string                    `json:"host" binding:"required"`
	Email       string                    `json:"email"`
	Description string                    `json:"description"`
	Status      *models.RoomStatus        `json:"status"`
	Capacity    *int                      `json:"capacity"`
	Settings    *models.QueueRoomSettings `json:"settings"`
}

type RoomIDRequest struct {
	ID string `json:"id"`
}

type JoinRoomRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

// JoinResponse - результат входа в очередь. GuestToken выдаётся только гостям.
type JoinResponse struct {
	Message    string            `json:"message"`
	Data       models.QueueEntry `json:"data"`
	Position   int               `json:"position"`
	GuestToken string            `json:"guest_token,omitempty"`
}

type EditRoomResponse struct {
	Message string            `json:"message"`
	Data    *models.QueueRoom `json:"data"`
	Updated map[string]any    `json:"updated"`
	Removed []string          `json:"removed"`
}

// CreateRoom godoc
// @Summary		Создание комнаты очереди
// @Tags			queue-room
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			room	body		CreateRoomRequest		true	"Данные комнаты"
// @Success		201		{object}	response.DataResponse	"Комната создана"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (INVALID_INPUT)"
// @Failure		401		{object}	response.ErrorResponse	"Нет доступа (UNAUTHORIZED)"
// @Failure		422		{object}	response.ErrorResponse	"Недопустимые поля комнаты (INVALID_INPUT)"
// @Router			/api/v1/queue-room/create [post]
func (h *Handler) CreateRoom(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	room, err := h.rooms.Create(c.Request.Context(), caller, rooms.CreateRequest{
		UserID:      req.UserID,
		Emoji:       req.Emoji,
		Name:        req.Name,
		Host:        req.Host,
		Email:       req.Email,
		Description: req.Description,
		Status:      req.Status,
		Capacity:    req.Capacity,
		Settings:    req.Settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.DataResponse{
		Message: fmt.Sprintf("Successfully created a queue room with name %q.", room.Name),
		Data:    room,
	})
}

// DeleteRoom godoc
// @Summary		Удаление комнаты очереди
// @Description	Удаляет комнату, все её записи и ссылки пользователей на них
// @Tags			queue-room
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			room	body		RoomIDRequest			true	"ID комнаты"
// @Success		200		{object}	response.SuccessResponse
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (INVALID_INPUT)"
// @Failure		401		{object}	response.ErrorResponse	"Не владелец комнаты (UNAUTHORIZED)"
// @Failure		404		{object}	response.ErrorResponse	"Комната не найдена (NOT_FOUND)"
// @Router			/api/v1/queue-room/delete [delete]
func (h *Handler) DeleteRoom(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	var req RoomIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.rooms.Delete(c.Request.Context(), caller, req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{
		Message: fmt.Sprintf("Successfully deleted queue room with id '%s'.", result.RoomID),
	})
}

// EditRoom godoc
// @Summary		Редактирование комнаты очереди
// @Description	Частичное обновление: null сбрасывает поле к значению по умолчанию, неизвестные поля игнорируются
// @Tags			queue-room
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			room	body		object					true	"id комнаты и изменяемые поля"
// @Success		200		{object}	EditRoomResponse
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (INVALID_INPUT)"
// @Failure		401		{object}	response.ErrorResponse	"Не владелец комнаты (UNAUTHORIZED)"
// @Failure		404		{object}	response.ErrorResponse	"Комната не найдена (NOT_FOUND)"
// @Failure		403		{object}	response.ErrorResponse	"В очереди больше записей, чем новая вместимость (RESOURCE_UNAVAILABLE)"
// @Router			/api/v1/queue-room/edit [put]
func (h *Handler) EditRoom(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BindError(c, err)
		return
	}
	roomID, _ := patch["id"].(string)
	delete(patch, "id")

	result, err := h.rooms.Edit(c.Request.Context(), caller, roomID, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, EditRoomResponse{
		Message: fmt.Sprintf("Successfully updated queue room with id '%s'.", result.Room.ID),
		Data:    result.Room,
		Updated: result.Updated,
		Removed: result.Removed,
	})
}

// JoinRoom godoc
// @Summary		Вход в очередь по коду
// @Description	Гостям нужен email, в ответе они получают guest_token для выхода из очереди. С заголовком Authorization вход выполняется от имени пользователя.
// @Tags			queue-room
// @Accept			json
// @Produce		json
// @Param			entry	body		JoinRoomRequest			true	"Данные записи"
// @Success		201		{object}	JoinResponse
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (INVALID_INPUT)"
// @Failure		401		{object}	response.ErrorResponse	"Неверный токен (UNAUTHORIZED)"
// @Failure		403		{object}	response.ErrorResponse	"Очередь закрыта, заполнена или вход уже выполнен (RESOURCE_UNAVAILABLE)"
// @Failure		404		{object}	response.ErrorResponse	"Очередь не найдена (NOT_FOUND)"
// @Failure		429		{object}	response.ErrorResponse	"Слишком много запросов (RATE_LIMITED)"
// @Router			/api/v1/queue-room/join [post]
func (h *Handler) JoinRoom(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	var credential string
	if header := c.GetHeader("Authorization"); header != "" {
		token, err := auth.BearerToken(header)
		if err != nil {
			response.Error(c, err)
			return
		}
		credential = token
	}

	result, err := h.rooms.Join(c.Request.Context(), rooms.JoinRequest{
		Code:        req.Code,
		Name:        req.Name,
		Email:       req.Email,
		Topic:       req.Topic,
		Description: req.Description,
		Credential:  credential,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, JoinResponse{
		Message:    fmt.Sprintf("Successfully joined the queue with code %q.", result.Code),
		Data:       result.Entry,
		Position:   result.Position,
		GuestToken: result.GuestToken,
	})
}

// LeaveRoom godoc
// @Summary		Выход из очереди
// @Description	Принимает access токен пользователя или guest_token, выданный при входе
// @Tags			queue-room
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			room	body		RoomIDRequest			true	"ID комнаты"
// @Success		200		{object}	response.SuccessResponse
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (INVALID_INPUT)"
// @Failure		401		{object}	response.ErrorResponse	"Неверный токен (UNAUTHORIZED)"
// @Failure		422		{object}	response.ErrorResponse	"Вы не в очереди (NO_OPERATION)"
// @Router			/api/v1/queue-room/leave [delete]
func (h *Handler) LeaveRoom(c *gin.Context) {
	var req RoomIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	credential, err := auth.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.rooms.Leave(c.Request.Context(), req.ID, credential)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{
		Message: fmt.Sprintf("Successfully left the queue %q.", result.RoomName),
	})
}

// RoomByCode godoc
// @Summary		Публичное состояние комнаты
// @Description	Список ожидающих возвращается, только если в настройках комнаты включён queue_visible
// @Tags			queue-room
// @Produce		json
// @Param			code	path		string	true	"Код комнаты"
// @Success		200		{object}	rooms.RoomView
// @Failure		400		{object}	response.ErrorResponse	"Неверный код (INVALID_INPUT)"
// @Failure		404		{object}	response.ErrorResponse	"Очередь не найдена (NOT_FOUND)"
// @Router			/api/v1/queue-room/code/{code} [get]
func (h *Handler) RoomByCode(c *gin.Context) {
	view, err := h.rooms.Snapshot(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RoomEntries godoc
// @Summary		Записи комнаты для владельца
// @Tags			queue-room
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		string	true	"ID комнаты"
// @Success		200	{object}	rooms.HostQueue
// @Failure		401	{object}	response.ErrorResponse	"Не владелец комнаты (UNAUTHORIZED)"
// @Failure		404	{object}	response.ErrorResponse	"Комната не найдена (NOT_FOUND)"
// @Router			/api/v1/queue-room/{id}/entries [get]
func (h *Handler) RoomEntries(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	queue, err := h.rooms.HostEntries(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, queue)
}
