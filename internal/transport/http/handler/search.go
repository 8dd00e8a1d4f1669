package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"talentsearch/internal/app"
	"talentsearch/internal/model"
)

type SearchHandler struct {
	retrieval *app.RetrievalService
}

type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k" binding:"omitempty,min=1,max=20"`
}

// SearchResponse keeps the flat {"results": [...]} shape the search
// endpoint has always exposed, unlike the enveloped /api/v1 routes.
type SearchResponse struct {
	Results []model.Match `json:"results"`
}

func NewSearchHandler(retrieval *app.RetrievalService) *SearchHandler {
	return &SearchHandler{retrieval: retrieval}
}

// Search runs a semantic query. An empty or whitespace query returns an
// empty result set without touching the retrieval core; backend failures
// map to 502/503 so callers can tell them apart from "nothing relevant".
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusOK, SearchResponse{Results: []model.Match{}})
		return
	}

	matches, err := h.retrieval.Retrieve(c.Request.Context(), req.Query, req.K)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrStore):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search backend unavailable, run ingestion first"})
		case errors.Is(err, app.ErrEmbedding):
			c.JSON(http.StatusBadGateway, gin.H{"error": "embedding provider failed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal search error"})
		}
		return
	}

	if matches == nil {
		matches = []model.Match{}
	}
	c.JSON(http.StatusOK, SearchResponse{Results: matches})
}
