package handlers

import (
	"net/http"
	"strings"

	"github.com/pebblebot/pebble/internal/adapter"
	"github.com/pebblebot/pebble/internal/api"
	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/domain/chatModel"
	"github.com/pebblebot/pebble/internal/rag"
)

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ChatHandler godoc
// @Summary      Run one chat turn
// @Description  Sends a message to the bot. Accepts JSON, or multipart/form-data when attaching files; documents are ingested into the caller's knowledge base and images are analyzed into context before the reply is generated.
// @Tags         Chat
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        request  body      api.ChatRequest   true  "Message plus tenant coordinates"
// @Success      200      {object}  api.ChatResponse  "Assistant reply"
// @Failure      400      {object}  api.ErrorResponse "Missing user_id or malformed body"
// @Failure      502      {object}  api.ErrorResponse "LLM call failed"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid context by request", "remote", r.RemoteAddr)
		return
	}

	var requestData api.ChatRequest
	var attachments []chatModel.Attachment

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(config.MaxUploadBytes + 1024*1024); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request", err.Error())
			return
		}
		requestData.Message = r.FormValue("message")
		requestData.UserID = r.FormValue("user_id")
		requestData.ThreadID = r.FormValue("thread_id")
		if r.MultipartForm != nil {
			for _, header := range r.MultipartForm.File["attachments"] {
				attachments = append(attachments, &multipartAttachment{header: header})
			}
		}
	} else {
		defer r.Body.Close()
		if err := decodeJSONBody(w, r, &requestData); err != nil {
			return
		}
	}

	scope, ok := scopeFromValues(requestData.UserID, requestData.ThreadID)
	if !ok {
		WriteErrorResponse(w, http.StatusBadRequest, "user_id is required", "")
		return
	}
	if strings.TrimSpace(requestData.Message) == "" && len(attachments) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "message or attachments required", "")
		return
	}

	result, err := orchestrator.HandleTurn(r.Context(), scope, requestData.Message, attachments)
	if err != nil {
		logRH.Error("chat turn failed", "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, "chat completion failed", err.Error())
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(result))
}

// PostIngestHandler godoc
// @Summary      Upload a document for ingestion
// @Description  Receives a .txt or .pdf file via multipart/form-data and stores its chunks in the caller's tenant partition.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        user_id    formData  string  true   "User identifier"
// @Param        thread_id  formData  string  false  "Thread identifier"
// @Param        document   formData  file    true   "The .txt or .pdf file to upload"
// @Success      200  {object}  api.IngestResponse "Stored chunk counts"
// @Failure      400  {object}  api.ErrorResponse  "Bad upload"
// @Failure      503  {object}  api.ErrorResponse  "RAG system unavailable"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid context by request", "remote", r.RemoteAddr)
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadBytes + 1024*1024); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request", err.Error())
		return
	}
	scope, ok := scopeFromValues(r.FormValue("user_id"), r.FormValue("thread_id"))
	if !ok {
		WriteErrorResponse(w, http.StatusBadRequest, "user_id is required", "")
		return
	}

	fileReader, fileHeader, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file", err.Error())
		return
	}
	fileReader.Close()

	result, err := ragService.Ingest(r.Context(), &multipartAttachment{header: fileHeader}, scope)
	if err != nil {
		code := http.StatusBadRequest
		if err == rag.ErrUnavailable {
			code = http.StatusServiceUnavailable
		}
		WriteErrorResponse(w, code, err.Error(), "")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToIngestResponse(result))
}

// ResetHandler godoc
// @Summary      Reset conversation state
// @Description  Clears the caller's conversation window, file and image context, and tenant documents. Inside a thread both the personal and the thread partitions are cleared.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ResetRequest   true  "Tenant coordinates"
// @Success      200      {object}  api.ResetResponse  "Confirmation text"
// @Failure      400      {object}  api.ErrorResponse  "Missing user_id"
// @Router       /reset [post]
func ResetHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	var requestData api.ResetRequest
	defer r.Body.Close()
	if err := decodeJSONBody(w, r, &requestData); err != nil {
		return
	}
	scope, ok := scopeFromValues(requestData.UserID, requestData.ThreadID)
	if !ok {
		WriteErrorResponse(w, http.StatusBadRequest, "user_id is required", "")
		return
	}

	message := orchestrator.Reset(r.Context(), scope)
	writeJsonResponse(w, http.StatusOK, api.ResetResponse{Message: message})
}

// HistoryStatusHandler godoc
// @Summary      Conversation window status
// @Description  Reports how many messages the caller's window holds and whether file or image context is loaded.
// @Tags         Chat
// @Produce      json
// @Param        user_id    query     string  true   "User identifier"
// @Param        thread_id  query     string  false  "Thread identifier"
// @Success      200  {object}  api.HistoryStatusResponse
// @Failure      400  {object}  api.ErrorResponse "Missing user_id"
// @Router       /history [get]
func HistoryStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	scope, ok := scopeFromValues(r.URL.Query().Get("user_id"), r.URL.Query().Get("thread_id"))
	if !ok {
		WriteErrorResponse(w, http.StatusBadRequest, "user_id is required", "")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToHistoryStatusResponse(orchestrator.HistoryStatus(scope)))
}
