package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/octostats/octostats/internal/middleware"
	"github.com/octostats/octostats/internal/models"
	"github.com/octostats/octostats/internal/services"
)

// ProfileProvider wraps the per-user profile operations, implemented by
// services.ProfileService.
type ProfileProvider interface {
	Follow(ctx context.Context, cred models.Credential, login string) error
	Unfollow(ctx context.Context, cred models.Credential, login string) error
	Get(ctx context.Context, cred models.Credential, login string) (*models.UserProfile, error)
}

// UserSearcher ranks users found by a language search, implemented by
// services.SearchService.
type UserSearcher interface {
	SearchAndRank(ctx context.Context, cred models.Credential, params services.SearchParams) ([]models.RankedUser, error)
}

type UsersHandler struct {
	profileService ProfileProvider
	searchService  UserSearcher
	statsService   StatsProvider
}

func NewUsersHandler(profileService ProfileProvider, searchService UserSearcher, statsService StatsProvider) *UsersHandler {
	return &UsersHandler{
		profileService: profileService,
		searchService:  searchService,
		statsService:   statsService,
	}
}

// Get returns another user's public profile.
func (h *UsersHandler) Get(c *gin.Context) {
	cred, ok := middleware.GetCredential(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), cred, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Follow follows the user named in the path.
func (h *UsersHandler) Follow(c *gin.Context) {
	cred, ok := middleware.GetCredential(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := h.profileService.Follow(c.Request.Context(), cred, c.Param("username")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Unfollow unfollows the user named in the path.
func (h *UsersHandler) Unfollow(c *gin.Context) {
	cred, ok := middleware.GetCredential(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := h.profileService.Unfollow(c.Request.Context(), cred, c.Param("username")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Commits counts another user's commits since a date given as
// ?since=YYYY-MM-DD.
func (h *UsersHandler) Commits(c *gin.Context) {
	cred, ok := middleware.GetCredential(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	result, err := h.statsService.CountCommitsForUser(c.Request.Context(), cred, c.Param("username"), c.Query("since"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Search finds users by language and ranks them by commit activity. The
// query string mirrors the upstream search qualifiers.
func (h *UsersHandler) Search(c *gin.Context) {
	cred, ok := middleware.GetCredential(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	pages := 1
	if raw := c.Query("pages"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pages must be a number"})
			return
		}
		pages = parsed
	}

	params := services.SearchParams{
		Language: c.Query("language"),
		Type:     c.Query("type"),
		Location: c.Query("location"),
		Sort:     c.Query("sort"),
		Since:    c.Query("since"),
		Pages:    pages,
	}

	ranked, err := h.searchService.SearchAndRank(c.Request.Context(), cred, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ranked)
}
