package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/pebblebot/pebble/internal/adapter"
	"github.com/pebblebot/pebble/internal/chat"
	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/domain/chatModel"
	"github.com/pebblebot/pebble/internal/rag"
	"github.com/pebblebot/pebble/pkg/logger_i"
)

var (
	logRH        *logger_i.Logger
	orchestrator *chat.Orchestrator
	ragService   rag.Service
)

func Init(o *chat.Orchestrator, r rag.Service) {
	logRH = logger_i.NewLogger("Handlers")
	orchestrator = o
	ragService = r
}

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// too late for a clean status code
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string, detail string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(httpCode, message, detail))
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, out interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		logRH.Warn("Bad request body", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request", err.Error())
		return err
	}
	return nil
}

func validateContext(ctx context.Context) bool {
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		logRH.With("traceId", trace)
	}
	if ctx.Err() != nil {
		logRH.Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

// scopeFromValues reads the tenant coordinates from either query params or
// form fields. user_id is mandatory everywhere.
func scopeFromValues(userID, threadID string) (chatModel.Scope, bool) {
	if userID == "" {
		return chatModel.Scope{}, false
	}
	return chatModel.Scope{UserID: userID, ThreadID: threadID}, true
}

// multipartAttachment adapts an uploaded form file to the attachment contract
// the ingestion pipeline expects.
type multipartAttachment struct {
	header *multipart.FileHeader
}

func (a *multipartAttachment) Filename() string { return a.header.Filename }
func (a *multipartAttachment) Size() int64      { return a.header.Size }

func (a *multipartAttachment) Save(path string) error {
	src, err := a.header.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
