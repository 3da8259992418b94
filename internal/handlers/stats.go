package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/octostats/octostats/internal/export"
	"github.com/octostats/octostats/internal/middleware"
	"github.com/octostats/octostats/internal/models"
)

// StatsProvider aggregates the authenticated user's upstream data,
// implemented by services.StatsService.
type StatsProvider interface {
	ListRepositories(ctx context.Context, cred models.Credential) ([]models.Repository, error)
	CountStars(ctx context.Context, cred models.Credential) (*models.StarsResult, error)
	CountCommits(ctx context.Context, cred models.Credential) (*models.CommitsResult, error)
	CountCommitsForUser(ctx context.Context, cred models.Credential, login, since string) (*models.CommitsSinceResult, error)
	CountPulls(ctx context.Context, cred models.Credential) (*models.PullsResult, error)
	UsedLanguages(ctx context.Context, cred models.Credential) (map[string]float64, error)
	CommitsByRepository(ctx context.Context, cred models.Credential) (map[string]int, error)
}

type StatsHandler struct {
	statsService StatsProvider
}

func NewStatsHandler(statsService StatsProvider) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Repositories lists the authenticated user's repositories.
func (h *StatsHandler) Repositories(c *gin.Context) {
	cred, ok := middleware.GetCredential(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	repos, err := h.statsService.ListRepositories(c.Request.Context(), cred)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, repos)
}

// Stars returns the summed star count across all repositories.
func (h *StatsHandler) Stars(c *gin.Context) {
	cred, ok := middleware.GetCredential(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	result, err := h.statsService.CountStars(c.Request.Context(), cred)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Commits returns the total and current-year commit counts.
func (h *StatsHandler) Commits(c *gin.Context) {
	cred, ok := middleware.GetCredential(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	result, err := h.statsService.CountCommits(c.Request.Context(), cred)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Pulls returns the total and current-year pull request counts.
func (h *StatsHandler) Pulls(c *gin.Context) {
	cred, ok := middleware.GetCredential(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	result, err := h.statsService.CountPulls(c.Request.Context(), cred)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Languages returns the language usage percentages across all repositories.
func (h *StatsHandler) Languages(c *gin.Context) {
	cred, ok := middleware.GetCredential(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	result, err := h.statsService.UsedLanguages(c.Request.Context(), cred)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Export streams the full aggregation as an xlsx workbook.
func (h *StatsHandler) Export(c *gin.Context) {
	cred, ok := middleware.GetCredential(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx := c.Request.Context()

	stars, err := h.statsService.CountStars(ctx, cred)
	if err != nil {
		respondError(c, err)
		return
	}
	commits, err := h.statsService.CountCommits(ctx, cred)
	if err != nil {
		respondError(c, err)
		return
	}
	pulls, err := h.statsService.CountPulls(ctx, cred)
	if err != nil {
		respondError(c, err)
		return
	}
	languages, err := h.statsService.UsedLanguages(ctx, cred)
	if err != nil {
		respondError(c, err)
		return
	}
	perRepo, err := h.statsService.CommitsByRepository(ctx, cred)
	if err != nil {
		respondError(c, err)
		return
	}

	workbook, err := export.StatsWorkbook(export.Stats{
		Login:               cred.Login,
		Stars:               stars.Stars,
		Commits:             *commits,
		Pulls:               *pulls,
		Languages:           languages,
		CommitsByRepository: perRepo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	defer workbook.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-stats.xlsx", cred.Login))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		c.Abort()
	}
}
