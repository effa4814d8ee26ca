package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pebblebot/pebble/internal/adapter"
	"github.com/pebblebot/pebble/internal/adapter/utils"
	"github.com/pebblebot/pebble/internal/api"
	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/domain/chatModel"
)

func scopeFromQuery(w http.ResponseWriter, r *http.Request) (chatModel.Scope, bool) {
	scope, ok := scopeFromValues(r.URL.Query().Get("user_id"), r.URL.Query().Get("thread_id"))
	if !ok {
		WriteErrorResponse(w, http.StatusBadRequest, "user_id is required", "")
	}
	return scope, ok
}

// DocsListHandler godoc
// @Summary      List stored documents
// @Description  Lists every document in the caller's tenant partition with chunk and page counts.
// @Tags         Documents
// @Produce      json
// @Param        user_id    query     string  true   "User identifier"
// @Param        thread_id  query     string  false  "Thread identifier"
// @Success      200  {object}  api.DocumentListResponse
// @Failure      400  {object}  api.ErrorResponse "Missing user_id"
// @Router       /docs [get]
func DocsListHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	scope, ok := scopeFromQuery(w, r)
	if !ok {
		return
	}

	files := ragService.ListStoredFiles(r.Context(), scope)
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(files))
}

// DocsClearHandler godoc
// @Summary      Clear the document knowledge base
// @Description  Deletes every document in the caller's tenant partition.
// @Tags         Documents
// @Produce      json
// @Param        user_id    query     string  true   "User identifier"
// @Param        thread_id  query     string  false  "Thread identifier"
// @Success      200  {object}  api.DeletionResponse
// @Failure      400  {object}  api.ErrorResponse "Missing user_id"
// @Failure      503  {object}  api.ErrorResponse "RAG system unavailable"
// @Router       /docs [delete]
func DocsClearHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	scope, ok := scopeFromQuery(w, r)
	if !ok {
		return
	}

	if !ragService.DeleteTenantData(r.Context(), scope) {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "Could not clear documents", "")
		return
	}
	contextType := "personal"
	if scope.InThread() {
		contextType = "thread"
	}
	writeJsonResponse(w, http.StatusOK, api.DeletionResponse{
		Message: fmt.Sprintf("✅ All documents cleared from your %s knowledge base.", contextType),
	})
}

// DocsDeleteHandler godoc
// @Summary      Delete one document
// @Description  Removes a single document's chunks from the caller's tenant partition.
// @Tags         Documents
// @Produce      json
// @Param        filename   path      string  true   "Document filename"
// @Param        user_id    query     string  true   "User identifier"
// @Param        thread_id  query     string  false  "Thread identifier"
// @Success      200  {object}  api.DeletionResponse
// @Failure      400  {object}  api.ErrorResponse "Missing user_id or filename"
// @Failure      503  {object}  api.ErrorResponse "RAG system unavailable"
// @Router       /docs/{filename} [delete]
func DocsDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	scope, ok := scopeFromQuery(w, r)
	if !ok {
		return
	}
	filename := utils.GetChiURLParam(r, "filename")
	if filename == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "filename is required", "")
		return
	}

	if !ragService.DeleteFile(r.Context(), scope, filename) {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "Could not delete document", "")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DeletionResponse{
		Message: fmt.Sprintf("✅ Deleted '%s' from your knowledge base.", filename),
	})
}

// DocsSearchHandler godoc
// @Summary      Search stored documents
// @Description  Runs a semantic search over the caller's tenant partition and returns the closest chunks.
// @Tags         Documents
// @Produce      json
// @Param        q          query     string  true   "Search query"
// @Param        user_id    query     string  true   "User identifier"
// @Param        thread_id  query     string  false  "Thread identifier"
// @Success      200  {object}  api.SearchResponse
// @Failure      400  {object}  api.ErrorResponse "Missing user_id or query"
// @Router       /docs/search [get]
func DocsSearchHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	scope, ok := scopeFromQuery(w, r)
	if !ok {
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "q is required", "")
		return
	}

	hits := ragService.QueryDocuments(r.Context(), query, scope, config.SearchLimit)
	writeJsonResponse(w, http.StatusOK, adapter.ToSearchResponse(query, hits))
}
