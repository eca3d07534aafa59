package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alimgiray/yearscope/internal/services"
	"github.com/alimgiray/yearscope/pkg/logger"
)

type RateLimitHandler struct {
	githubService *services.GithubService
}

func NewRateLimitHandler(githubService *services.GithubService) *RateLimitHandler {
	return &RateLimitHandler{githubService: githubService}
}

// RateLimit handles GET /api/rate-limit
func (h *RateLimitHandler) RateLimit(c *gin.Context) {
	info, err := h.githubService.GetRateLimits(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("failed to get rate limits")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch rate limit information"})
		return
	}

	c.JSON(http.StatusOK, info)
}
