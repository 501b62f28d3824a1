package httpapi

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/persist"
)

const dateLayout = "2006-01-02"

func (a *API) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	query, err := salesQueryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	report, err := a.service.SalesReport(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func salesQueryFromRequest(r *http.Request) (domain.SalesReportQuery, error) {
	values := r.URL.Query()
	query := domain.SalesReportQuery{
		ClientID:      strings.TrimSpace(values.Get("clientId")),
		ProductID:     strings.TrimSpace(values.Get("productId")),
		PaymentStatus: domain.PaymentStatus(strings.TrimSpace(values.Get("paymentStatus"))),
	}
	if query.PaymentStatus != "" && !query.PaymentStatus.Valid() {
		return query, fmt.Errorf("invalid paymentStatus %q", query.PaymentStatus)
	}

	from, err := parseDateParam(values.Get("from"), false)
	if err != nil {
		return query, fmt.Errorf("invalid from: %w", err)
	}
	to, err := parseDateParam(values.Get("to"), true)
	if err != nil {
		return query, fmt.Errorf("invalid to: %w", err)
	}
	query.From, query.To = from, to
	return query, nil
}

// parseDateParam accepts RFC 3339 or a plain date. A plain "to" date covers
// the whole day.
func parseDateParam(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		ts = ts.UTC()
		return &ts, nil
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return &day, nil
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := a.service.ListUsers(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	case http.MethodPost:
		var req domain.UserInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		user, err := a.service.AddUser(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"user": user})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleUserActions(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r, "/api/v1/users/")
	if len(parts) != 1 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, errors.New("user id required"))
		return
	}
	id := parts[0]

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var req domain.UserInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		user, err := a.service.UpdateUser(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	case http.MethodDelete:
		if err := a.service.DeleteUser(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeMethodNotAllowed(w)
	}
}

// handleBackupExport returns the document in the backup file format.
func (a *API) handleBackupExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	doc, err := a.service.Export(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	filename := fmt.Sprintf("aminashop-backup-%s.json", time.Now().UTC().Format(dateLayout))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	writeJSON(w, http.StatusOK, doc)
}

func (a *API) handleBackupRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, err := persist.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.service.RestoreData(r.Context(), doc); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "version": a.service.Version()})
}

func (a *API) handleBackupSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := a.service.BackupSettings(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
	case http.MethodPut, http.MethodPatch:
		var req domain.BackupSettingsInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		settings, err := a.service.UpdateBackupSettings(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
	default:
		writeMethodNotAllowed(w)
	}
}

// handleBackupLastRun records that the client has just saved a backup file.
func (a *API) handleBackupLastRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	settings, err := a.service.UpdateLastBackupTimestamp(r.Context(), time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if err := a.service.ResetAllData(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handlePersistenceStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	if a.gateway == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("persistence disabled"))
		return
	}
	writeJSON(w, http.StatusOK, a.gateway.Report())
}

// handlePersistenceFlush saves the document now instead of waiting for the
// debounce window.
func (a *API) handlePersistenceFlush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if a.gateway == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("persistence disabled"))
		return
	}
	if err := a.gateway.Flush(r.Context()); err != nil {
		log.Printf("[httpapi] WARN: manual flush failed: %v", err)
		writeJSON(w, http.StatusBadGateway, a.gateway.Report())
		return
	}
	writeJSON(w, http.StatusOK, a.gateway.Report())
}
