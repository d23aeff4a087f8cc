package handlers

import (
	"go-reviewlens/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExtractEntities is the JSON form of the entity action.
func ExtractEntities(c *gin.Context, env *Env) {
	var request types.ReviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entities, err := env.Extractor.Extract(c.Request.Context(), request.Review)
	if err != nil {
		log.Printf("Error analyzing entities: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to analyze entities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

// Health reports which of the two features are usable.
func Health(c *gin.Context, env *Env) {
	c.JSON(http.StatusOK, gin.H{
		"sentiment_enabled": env.Analyzer.Enabled(),
		"entities_enabled":  env.Extractor.Enabled(),
		"sessions":          env.Sessions.Len(),
	})
}
