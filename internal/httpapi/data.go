package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"aminashop/backend/internal/store"
)

// DataHandler serves one JSON document over GET and POST /data. It is the
// persistence endpoint consumed by store/remote.
type DataHandler struct {
	docs   store.DocumentStore
	apiKey string
}

func NewDataHandler(docs store.DocumentStore, apiKey string) *DataHandler {
	return &DataHandler{docs: docs, apiKey: apiKey}
}

func (h *DataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	startedAt := time.Now()
	defer func() {
		log.Printf("[data] %s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	}()

	if r.URL.Path == "/healthz" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	if r.URL.Path != "/data" {
		writeError(w, http.StatusNotFound, errors.New("not found"))
		return
	}
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, errors.New("invalid data key"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		body, err := h.docs.Load(r.Context())
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("no data saved yet"))
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	case http.MethodPost, http.MethodPut:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		if !json.Valid(body) {
			writeError(w, http.StatusBadRequest, errors.New("body is not valid JSON"))
			return
		}
		if err := h.docs.Save(r.Context(), body); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "bytes": len(body)})
	default:
		writeMethodNotAllowed(w)
	}
}

func (h *DataHandler) authorized(r *http.Request) bool {
	if h.apiKey == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Data-Key")), []byte(h.apiKey)) == 1
}
