package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"asset_tracker/internal/apperr"
	"asset_tracker/internal/auth"
	"asset_tracker/internal/models"
)

var statusByKind = map[apperr.Kind]int{
	apperr.NotFound:     http.StatusNotFound,
	apperr.InvalidState: http.StatusConflict,
	apperr.Validation:   http.StatusBadRequest,
	apperr.Busy:         http.StatusServiceUnavailable,
	apperr.Unexpected:   http.StatusInternalServerError,
}

func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	body := gin.H{"error": err.Error(), "kind": kind}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Details != nil {
		body["details"] = ae.Details
	}
	if kind == apperr.Busy {
		c.Header("Retry-After", "1")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": apperr.Validation})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id", "kind": apperr.Validation})
		return 0, false
	}
	return id, true
}

func actor(c *gin.Context) (models.Actor, bool) {
	a, ok := auth.ActorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return a, ok
}

func queryInt(c *gin.Context, name string, def int) int {
	if s := c.Query(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}
