package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/celprep/practice-service/internal/services"
	"github.com/celprep/practice-service/internal/utils"
)

type HandlerManager struct {
	authService services.AuthService

	sessionHandler *SessionHandler
	authHandler    *AuthHandler
	contentHandler *ContentHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authService:    serviceManager.Auth(),
		sessionHandler: NewSessionHandler(serviceManager.Session(), logger),
		authHandler:    NewAuthHandler(serviceManager.Auth(), logger),
		contentHandler: NewContentHandler(serviceManager.Content(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "practice-service",
		})
	})

	v1 := router.Group("/api/v1")
	authRequired := AuthMiddleware(hm.authService)
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", hm.authHandler.SignUp)
			auth.POST("/signin", hm.authHandler.SignIn)
			auth.POST("/signout", authRequired, hm.authHandler.SignOut)
			auth.POST("/signout-all", authRequired, AdminMiddleware(), hm.authHandler.SignOutAll)
			auth.GET("/me", authRequired, hm.authHandler.CurrentUser)
		}

		// Session routes
		sessions := v1.Group("/sessions", authRequired)
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.POST("/:id/advance", hm.sessionHandler.Advance)
			sessions.POST("/:id/retreat", hm.sessionHandler.Retreat)
			sessions.POST("/:id/answers", hm.sessionHandler.RecordAnswer)
			sessions.POST("/:id/recording/stop", hm.sessionHandler.StopRecording)
			sessions.POST("/:id/microphone", hm.sessionHandler.SetMicrophonePermission)
			sessions.GET("/:id/results", hm.sessionHandler.GetResults)
			sessions.DELETE("/:id", hm.sessionHandler.AbandonSession)
		}

		// Result history
		v1.GET("/results", authRequired, hm.sessionHandler.GetHistory)

		// Question bank management (admin only)
		questions := v1.Group("/questions", authRequired, AdminMiddleware())
		{
			questions.POST("", hm.contentHandler.CreateQuestion)
			questions.GET("", hm.contentHandler.ListQuestions)
			questions.GET("/export", hm.contentHandler.ExportQuestions)
			questions.POST("/import", hm.contentHandler.ImportQuestions)
			questions.GET("/:id", hm.contentHandler.GetQuestion)
			questions.PUT("/:id", hm.contentHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.contentHandler.DeleteQuestion)
		}
	}
}
