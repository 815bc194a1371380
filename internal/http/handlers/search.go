package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/http/response"
	"github.com/yungbote/opsdesk-backend/internal/services"
)

type SearchHandler struct {
	search services.SearchService
}

func NewSearchHandler(search services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// GET /api/search?q=&tables=a,b&limit=&offset=&sort_by=&sort_order=
func (h *SearchHandler) Search(c *gin.Context) {
	res, err := h.search.FullTextSearch(c.Request.Context(), services.SearchOptions{
		Query:     strings.TrimSpace(c.Query("q")),
		Tables:    queryCSV(c, "tables"),
		Limit:     queryInt(c, "limit", 20),
		Offset:    queryInt(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "relevance"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	})
	if err != nil {
		response.Error(c, "search_failed", err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/search/ai
func (h *SearchHandler) AISearch(c *gin.Context) {
	var req services.AISearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.search.AISearch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, "ai_search_failed", err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/search/suggestions?prefix=
func (h *SearchHandler) Suggestions(c *gin.Context) {
	out, err := h.search.Suggestions(c.Request.Context(), strings.TrimSpace(c.Query("prefix")))
	if err != nil {
		response.Error(c, "search_suggestions_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"suggestions": out})
}

// GET /api/search/similar?table=&record_id=&limit=
func (h *SearchHandler) Similar(c *gin.Context) {
	table, recordID := strings.TrimSpace(c.Query("table")), strings.TrimSpace(c.Query("record_id"))
	if table == "" || recordID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("table and record_id required"))
		return
	}
	out, err := h.search.SimilarSearch(c.Request.Context(), table, recordID, queryInt(c, "limit", 5))
	if err != nil {
		response.Error(c, "similar_search_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"results": out})
}

// PUT /api/search/documents
// body: { "documents": [ {table_name, record_id, title, ...} ] }
func (h *SearchHandler) IndexDocuments(c *gin.Context) {
	var req struct {
		Documents []*types.SearchDocument `json:"documents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.search.Index(c.Request.Context(), req.Documents); err != nil {
		response.Error(c, "search_index_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"indexed": len(req.Documents)})
}

// DELETE /api/search/documents/:table/:record_id
func (h *SearchHandler) RemoveDocument(c *gin.Context) {
	if err := h.search.Remove(c.Request.Context(), c.Param("table"), c.Param("record_id")); err != nil {
		response.Error(c, "search_remove_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
