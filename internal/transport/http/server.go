package http

import (
	"github.com/gin-gonic/gin"

	appsvc "talentsearch/internal/app"
	"talentsearch/internal/bootstrap"
	"talentsearch/internal/transport/http/handler"
	"talentsearch/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	retrievalService := appsvc.NewRetrievalService(
		app.Embedder,
		app.Store,
		app.Config.Retrieval.RelevanceFloor,
		app.Config.Retrieval.TopK,
	)
	answerService := appsvc.NewAnswerService(retrievalService, app.Generator)

	searchHandler := handler.NewSearchHandler(retrievalService)
	answerHandler := handler.NewAnswerHandler(answerService)
	authHandler := handler.NewAuthHandler(app.AuthService)
	ingestHandler := handler.NewIngestHandler(app.JobPublisher, app.JobStatus, app.Store)

	router.POST("/search", searchHandler.Search)

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/answer", answerHandler.Answer)

	ingestGroup := v1.Group("/ingest")
	ingestGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	ingestGroup.POST("", ingestHandler.Enqueue)
	ingestGroup.GET("/jobs/:id", ingestHandler.JobStatus)
	ingestGroup.DELETE("/store", ingestHandler.ResetStore)

	return router
}
