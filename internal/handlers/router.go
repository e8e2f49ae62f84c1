package handlers

import (
	"queueroom/internal/auth"
	"queueroom/internal/limiter"
	"queueroom/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router собирает все маршруты API.
type Router struct {
	Handler *Handler
	Limiter limiter.Limiter
	Hub     *ws.Hub
	Debug   bool
}

func (rt Router) Engine() *gin.Engine {
	r := gin.New()
	if rt.Debug {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h := rt.Handler
	requireUser := auth.AuthMiddleware(h.resolver)

	v1 := r.Group("/api/v1")
	v1.GET("/echo", h.Echo)

	users := v1.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.POST("/refresh", h.RefreshToken)
	}

	room := v1.Group("/queue-room")
	{
		room.POST("/create", limiter.Middleware(rt.Limiter, "create"), requireUser, h.CreateRoom)
		room.DELETE("/delete", requireUser, h.DeleteRoom)
		room.PUT("/edit", requireUser, h.EditRoom)
		room.POST("/join", limiter.Middleware(rt.Limiter, "join"), h.JoinRoom)
		room.DELETE("/leave", h.LeaveRoom)
		room.GET("/code/:code", h.RoomByCode)
		room.GET("/:id/entries", requireUser, h.RoomEntries)
		if rt.Hub != nil {
			room.GET("/:id/ws", rt.Hub.RoomWebSocketHandler)
		}
	}

	profile := v1.Group("/profile", requireUser)
	{
		profile.GET("/rooms", h.UserRooms)
		profile.GET("/queues", h.UserQueues)
	}

	log.Info().Str("module", "handlers").Bool("ws", rt.Hub != nil).Msg("router setup")
	return r
}
