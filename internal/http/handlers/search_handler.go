package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"asset_tracker/internal/search"
)

type Searcher interface {
	Search(ctx context.Context, term, searchType string, page, pageSize int) (*search.Page, error)
}

func Search(s Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := s.Search(c.Request.Context(),
			c.Query("q"),
			c.Query("type"),
			queryInt(c, "page", 1),
			queryInt(c, "page_size", 0),
		)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}
