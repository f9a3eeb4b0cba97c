// Package server exposes the application over an HTTP API.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the handlers and middleware the router wires up.
type RouterConfig struct {
	Logger           *slog.Logger
	AuthMiddleware   *AuthMiddleware
	AccountHandler   *AccountHandler
	NoteHandler      *NoteHandler
	QuizHandler      *QuizHandler
	AnalyticsHandler *AnalyticsHandler
	AllowedOrigins   []string
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", healthCheck)

	api := router.Group("/api")
	api.POST("/register", cfg.AccountHandler.Register)
	api.POST("/login", cfg.AccountHandler.Login)

	protected := api.Group("")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/logout", cfg.AccountHandler.Logout)
	protected.GET("/me", cfg.AccountHandler.Me)
	protected.PUT("/me", cfg.AccountHandler.UpdateMe)

	protected.GET("/notes", cfg.NoteHandler.List)
	protected.POST("/notes", cfg.NoteHandler.Create)
	protected.GET("/notes/:id", cfg.NoteHandler.Get)
	protected.PUT("/notes/:id", cfg.NoteHandler.Update)
	protected.DELETE("/notes/:id", cfg.NoteHandler.Delete)
	protected.POST("/notes/:id/text", cfg.NoteHandler.AppendText)
	protected.POST("/notes/:id/images", cfg.NoteHandler.AppendImage)
	protected.POST("/notes/:id/ask", cfg.NoteHandler.Ask)
	protected.POST("/notes/:id/quiz", cfg.NoteHandler.GenerateQuiz)

	protected.GET("/quizzes", cfg.QuizHandler.List)
	protected.GET("/quizzes/:id", cfg.QuizHandler.Get)
	protected.POST("/quizzes/:id/submit", cfg.QuizHandler.Submit)

	protected.GET("/analytics", cfg.AnalyticsHandler.Report)

	return router
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
