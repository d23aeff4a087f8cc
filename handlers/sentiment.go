package handlers

import (
	"errors"
	"go-reviewlens/sentiment"
	"go-reviewlens/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AnalyzeSentiment is the JSON form of the sentiment action.
func AnalyzeSentiment(c *gin.Context, env *Env) {
	var request types.ReviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category, err := types.ParseCategory(request.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": sentiment.KindInvalid})
		return
	}

	narrative, err := env.Analyzer.Analyze(c.Request.Context(), request.Review, category)
	if err != nil {
		kind := sentiment.KindOf(err)
		message := "Sentiment analysis failed."
		var f *sentiment.Failure
		if errors.As(err, &f) {
			message = f.Message()
		}
		c.JSON(statusForKind(kind), gin.H{"error": message, "kind": kind})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":  category,
		"sentiment": narrative,
	})
}

func statusForKind(kind sentiment.Kind) int {
	switch kind {
	case sentiment.KindInvalid:
		return http.StatusBadRequest
	case sentiment.KindConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
