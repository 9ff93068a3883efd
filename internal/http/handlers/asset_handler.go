package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"asset_tracker/internal/history"
	"asset_tracker/internal/models"
)

// Reader is the unlocked read side of the repository.
type Reader interface {
	GetAsset(ctx context.Context, id int64) (*models.Asset, error)
	ListAssets(ctx context.Context, state models.AssetState, page, size int) ([]models.Asset, int64, error)
	GetAssignment(ctx context.Context, id int64) (*models.Assignment, error)
	GetRepair(ctx context.Context, id int64) (*models.Repair, error)
}

type Historian interface {
	GetHistory(ctx context.Context, assetID int64) ([]history.TimelineEvent, error)
}

const maxListPageSize = 100

func ListAssets(r Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := models.AssetState(c.Query("state"))
		if state != "" && !state.Valid() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown state " + string(state)})
			return
		}
		page := queryInt(c, "page", 1)
		if page < 1 {
			page = 1
		}
		size := queryInt(c, "page_size", 20)
		if size < 1 || size > maxListPageSize {
			size = 20
		}

		assets, total, err := r.ListAssets(c.Request.Context(), state, page, size)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"assets":    assets,
			"total":     total,
			"page":      page,
			"page_size": size,
		})
	}
}

func GetAsset(r Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		a, err := r.GetAsset(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"asset": a})
	}
}

func GetAssignment(r Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		a, err := r.GetAssignment(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"assignment": a, "destination": a.DestinationLabel()})
	}
}

func GetRepair(r Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		rep, err := r.GetRepair(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"repair": rep})
	}
}

func AssetHistory(h Historian) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		events, err := h.GetHistory(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"asset_id": id, "events": events})
	}
}
