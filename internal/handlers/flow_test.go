package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"queueroom/internal/auth"
	"queueroom/internal/config"
	"queueroom/internal/limiter"
	"queueroom/internal/rooms"
	"queueroom/internal/storage"
	"queueroom/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	store storage.Store
	hub   *ws.Hub
}

func setupTestServer(t *testing.T, joinLimit int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := storage.NewMemoryStore()
	tokens := auth.NewTokens(config.JWTConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessTTL:     time.Hour,
		RefreshTTL:    time.Hour,
	})
	resolver := auth.NewResolver(tokens, store)
	hub := ws.NewHub(store)
	go hub.Run(ctx)

	codes := rooms.NewCodes(config.RoomCodeConfig{CodeLength: 5, CodeAlphabet: "0123456789", CodeMaxAttempts: 16})
	svc := rooms.NewService(store, resolver, tokens, codes, rooms.WithNotifier(hub))

	engine := Router{
		Handler: New(store, tokens, resolver, svc),
		Limiter: limiter.NewMemoryLimiter(joinLimit, time.Minute),
		Hub:     hub,
	}.Engine()
	ts := httptest.NewServer(engine)
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, store: store, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res, out
}

func (s *testServer) register(t *testing.T, name, email string) (string, string) {
	t.Helper()
	res, body := s.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]any{
		"name": name, "email": email, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	user := body["user"].(map[string]any)
	return user["id"].(string), body["access_token"].(string)
}

func TestQueueRoomFlow(t *testing.T) {
	ts := setupTestServer(t, 100)

	// 1. Регистрируем владельца и участника
	ownerID, ownerToken := ts.register(t, "Host", "host@example.com")
	_, userToken := ts.register(t, "Ivan", "ivan@example.com")

	res, body := ts.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]any{
		"name": "Twin", "email": "HOST@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "INVALID_INPUT", body["code"])

	// 2. Создаём комнату на два места
	res, body = ts.do(t, http.MethodPost, "/api/v1/queue-room/create", ownerToken, map[string]any{
		"user_id": ownerID, "name": "Office hours", "host": "Host", "capacity": 2,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	room := body["data"].(map[string]any)
	roomID, code := room["id"].(string), room["code"].(string)

	// 3. Подписываемся на события комнаты
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/queue-room/" + roomID + "/ws"
	wsConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer wsConn.Close()
	require.Eventually(t, func() bool { return ts.hub.Subscribers(roomID) == 1 }, time.Second, 10*time.Millisecond)

	// 4. Гость и пользователь входят в очередь
	res, body = ts.do(t, http.MethodPost, "/api/v1/queue-room/join", "", map[string]any{
		"code": code, "name": "Guest", "email": "guest@example.com", "topic": "Lab 1",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	guestToken := body["guest_token"].(string)
	assert.EqualValues(t, 1, body["position"])

	res, body = ts.do(t, http.MethodPost, "/api/v1/queue-room/join", userToken, map[string]any{
		"code": code, "name": "Ivan", "topic": "Lab 2",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	assert.Nil(t, body["guest_token"])

	wsConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := wsConn.ReadMessage()
	require.NoError(t, err)
	var event map[string]any
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, rooms.EventEntryJoined, event["event_type"])

	// 5. Комната заполнена
	res, body = ts.do(t, http.MethodPost, "/api/v1/queue-room/join", "", map[string]any{
		"code": code, "name": "Late", "email": "late@example.com", "topic": "Lab 3",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "RESOURCE_UNAVAILABLE", body["code"])

	// 6. Публичное состояние и профиль
	res, body = ts.do(t, http.MethodGet, "/api/v1/queue-room/code/"+code, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 2, body["size"])
	assert.Len(t, body["queue"], 2)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/profile/queues", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	profileRes, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var queues []map[string]any
	require.NoError(t, json.NewDecoder(profileRes.Body).Decode(&queues))
	profileRes.Body.Close()
	require.Len(t, queues, 1)
	assert.EqualValues(t, 2, queues[0]["position"])

	// 7. Выход по guest-токену, повторный выход ничего не делает
	res, body = ts.do(t, http.MethodDelete, "/api/v1/queue-room/leave", guestToken, map[string]any{"id": roomID})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Equal(t, `Successfully left the queue "Office hours".`, body["message"])

	res, body = ts.do(t, http.MethodDelete, "/api/v1/queue-room/leave", guestToken, map[string]any{"id": roomID})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Equal(t, "NO_OPERATION", body["code"])

	// 8. Редактирование: чужой пользователь и недопустимая вместимость
	res, _ = ts.do(t, http.MethodPut, "/api/v1/queue-room/edit", userToken, map[string]any{"id": roomID, "name": "Mine"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, body = ts.do(t, http.MethodPut, "/api/v1/queue-room/edit", ownerToken, map[string]any{
		"id": roomID, "status": 1, "settings": map[string]any{"queue_visible": false},
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.EqualValues(t, 1, body["data"].(map[string]any)["status"])

	res, body = ts.do(t, http.MethodGet, "/api/v1/queue-room/"+roomID+"/entries", ownerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, body["entries"], 1)

	// 9. Удаление комнаты убирает ссылки у участников
	res, body = ts.do(t, http.MethodDelete, "/api/v1/queue-room/delete", ownerToken, map[string]any{"id": roomID})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	res, _ = ts.do(t, http.MethodGet, "/api/v1/queue-room/code/"+code, "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/api/v1/profile/queues", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	profileRes, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	queues = nil
	require.NoError(t, json.NewDecoder(profileRes.Body).Decode(&queues))
	profileRes.Body.Close()
	assert.Empty(t, queues)
}

func TestRoomEventsHideGuestsOfHiddenQueue(t *testing.T) {
	ts := setupTestServer(t, 100)
	ownerID, ownerToken := ts.register(t, "Host", "host@example.com")

	res, body := ts.do(t, http.MethodPost, "/api/v1/queue-room/create", ownerToken, map[string]any{
		"user_id": ownerID, "name": "Exam", "host": "Host",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	room := body["data"].(map[string]any)
	roomID, code := room["id"].(string), room["code"].(string)

	res, body = ts.do(t, http.MethodPut, "/api/v1/queue-room/edit", ownerToken, map[string]any{
		"id": roomID, "settings": map[string]any{"queue_visible": false},
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	wsBase := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/queue-room/"
	_, handshake, err := websocket.DefaultDialer.Dial(wsBase+"no-such-room/ws", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusNotFound, handshake.StatusCode)

	wsConn, _, err := websocket.DefaultDialer.Dial(wsBase+roomID+"/ws", nil)
	require.NoError(t, err)
	defer wsConn.Close()
	require.Eventually(t, func() bool { return ts.hub.Subscribers(roomID) == 1 }, time.Second, 10*time.Millisecond)

	res, body = ts.do(t, http.MethodPost, "/api/v1/queue-room/join", "", map[string]any{
		"code": code, "name": "Secret Guest", "email": "secret@example.com", "topic": "Private matter",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	wsConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := wsConn.ReadMessage()
	require.NoError(t, err)
	assert.NotContains(t, string(msg), "Secret Guest")
	assert.NotContains(t, string(msg), "Private matter")

	var event rooms.Event
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, rooms.EventEntryJoined, event.Type)
	assert.EqualValues(t, 1, event.Data["position"])
	assert.NotContains(t, event.Data, "guest_name")
	assert.NotContains(t, event.Data, "topic")
}

func TestAuthEndpoints(t *testing.T) {
	ts := setupTestServer(t, 100)
	ts.register(t, "Ivan", "ivan@example.com")

	res, body := ts.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]any{
		"email": "ivan@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	res, body = ts.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]any{
		"email": "Ivan@Example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	refresh := body["refresh_token"].(string)
	access := body["access_token"].(string)

	res, body = ts.do(t, http.MethodPost, "/api/v1/users/refresh", "", map[string]any{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.NotEmpty(t, body["access_token"])

	// access токен не подходит для обновления
	res, _ = ts.do(t, http.MethodPost, "/api/v1/users/refresh", "", map[string]any{"refresh_token": access})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.do(t, http.MethodGet, "/api/v1/profile/rooms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]any{
		"name": "Short", "email": "short@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestJoinIsRateLimited(t *testing.T) {
	ts := setupTestServer(t, 1)

	res, _ := ts.do(t, http.MethodPost, "/api/v1/queue-room/join", "", map[string]any{"code": "00000"})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body := ts.do(t, http.MethodPost, "/api/v1/queue-room/join", "", map[string]any{"code": "00000"})
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "RATE_LIMITED", body["code"])
}

func TestEcho(t *testing.T) {
	ts := setupTestServer(t, 1)
	res, err := http.Get(ts.URL + "/api/v1/echo")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
