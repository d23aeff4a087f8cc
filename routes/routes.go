package routes

import (
	"go-reviewlens/handlers"

	"github.com/gin-gonic/gin"
)

func SetupRouter(env *handlers.Env) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(handlers.Templates())

	r.GET("/", func(c *gin.Context) {
		handlers.ShowReviewPage(c, env)
	})
	r.POST("/review", func(c *gin.Context) {
		handlers.SubmitReview(c, env)
	})
	r.GET("/healthz", func(c *gin.Context) {
		handlers.Health(c, env)
	})

	// api routes
	api := r.Group("/api/reviews")
	{
		api.POST("/sentiment", func(c *gin.Context) {
			handlers.AnalyzeSentiment(c, env)
		})
		api.POST("/entities", func(c *gin.Context) {
			handlers.ExtractEntities(c, env)
		})
	}

	return r
}
