package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openrba/stepgate/ports"
	"github.com/openrba/stepgate/service"
)

// SetupRouter sets up the Gin router. rttHandler is the websocket endpoint
// for the timing connection; it requires an existing session and never
// creates one.
func SetupRouter(login *service.LoginService, store ports.SessionStore, rttHandler gin.HandlerFunc) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(login, store)

	auth := router.Group("/auth")
	auth.Use(EnsureSession())
	{
		auth.GET("/login", handlers.ShowLogin)
		auth.POST("/login", handlers.Login)
	}

	router.GET("/auth/rtt", RequireSession(), rttHandler)

	api := router.Group("/api")
	api.Use(AuthMiddleware(login.Tokens()))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
