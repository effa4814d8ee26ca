package middleware

import (
	"net/http"
	"strconv"

	"github.com/pebblebot/pebble/internal/handlers"
	"github.com/pebblebot/pebble/internal/metrics"
	"github.com/pebblebot/pebble/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var GetHandler = Wrap(handlers.GetHandler)

var ChatHandler = Wrap(handlers.ChatHandler)
var PostIngestHandler = Wrap(handlers.PostIngestHandler)
var ResetHandler = Wrap(handlers.ResetHandler)
var HistoryStatusHandler = Wrap(handlers.HistoryStatusHandler)
var DocsListHandler = Wrap(handlers.DocsListHandler)
var DocsClearHandler = Wrap(handlers.DocsClearHandler)
var DocsDeleteHandler = Wrap(handlers.DocsDeleteHandler)
var DocsSearchHandler = Wrap(handlers.DocsSearchHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200}
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Debug("New request received")

	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = rateLimiter(re)

	return re
}
