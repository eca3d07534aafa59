package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alimgiray/yearscope/internal/services"
	"github.com/alimgiray/yearscope/pkg/logger"
)

type AnalysisHandler struct {
	analysisService *services.AnalysisService
	exportService   *services.ExportService
}

func NewAnalysisHandler(analysisService *services.AnalysisService, exportService *services.ExportService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		exportService:   exportService,
	}
}

type analyzeRequest struct {
	Username string `json:"username"`
	Year     int    `json:"year"`
}

// Analyze handles POST /api/analyze
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}
	if req.Year == 0 {
		req.Year = time.Now().Year()
	}
	if req.Year < 2008 || req.Year > time.Now().Year() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}

	report, err := h.analysisService.AnalyzeUser(c.Request.Context(), req.Username, req.Year)
	if err != nil {
		h.writeAnalysisError(c, err, req.Username, req.Year)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Export handles GET /api/export/:username/:year
func (h *AnalysisHandler) Export(c *gin.Context) {
	username := c.Param("username")
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}

	report, err := h.analysisService.AnalyzeUser(c.Request.Context(), username, year)
	if err != nil {
		h.writeAnalysisError(c, err, username, year)
		return
	}

	file, err := h.exportService.ReportToExcel(report)
	if err != nil {
		logger.WithError(err).Error("failed to build excel export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("%s-%d.xlsx", report.Username, report.Year)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		logger.WithError(err).Error("failed to write excel export")
	}
}

func (h *AnalysisHandler) writeAnalysisError(c *gin.Context, err error, username string, year int) {
	switch {
	case errors.Is(err, services.ErrInvalidUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or GitHub URL"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, services.ErrNoActivity):
		c.JSON(http.StatusNotFound, gin.H{
			"error":    fmt.Sprintf("No activity found in %d", year),
			"username": username,
			"year":     year,
		})
	default:
		logger.WithError(err).WithField("username", username).Error("analysis failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not reach GitHub, please try again later"})
	}
}
