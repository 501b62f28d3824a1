package httpapi

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/persist"
	"aminashop/backend/internal/service"
	"aminashop/backend/internal/store"
)

const (
	maxJSONBytes   = 1 << 20
	maxBackupBytes = 32 << 20
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	gateway       *persist.Gateway
	hub           *Hub
	allowedOrigin string
	loginLimiter  *attemptLimiter
	csrfSecret    []byte
}

func New(svc *service.Service, auth *AuthManager, gateway *persist.Gateway, hub *Hub, allowedOrigin string) *API {
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		csrfSecret = []byte("csrf-fallback-secret-change-me!!")
	}
	return &API{
		service:       svc,
		auth:          auth,
		gateway:       gateway,
		hub:           hub,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		csrfSecret:    csrfSecret,
	}
}

// csrfTokenForHour computes an HMAC-SHA256 token for the given hour bucket
// (Unix time truncated to the hour), hex-encoded.
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

func (a *API) generateCSRFToken() string {
	bucket := time.Now().UTC().Truncate(time.Hour).Unix()
	return a.csrfTokenForHour(bucket)
}

// validateCSRFToken accepts tokens from the current or previous hour bucket.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	currentBucket := time.Now().UTC().Truncate(time.Hour).Unix()
	prevBucket := currentBucket - 3600

	expected1 := a.csrfTokenForHour(currentBucket)
	expected2 := a.csrfTokenForHour(prevBucket)

	return hmac.Equal([]byte(token), []byte(expected1)) ||
		hmac.Equal([]byte(token), []byte(expected2))
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("/api/v1/auth/csrf-token", a.handleCSRFToken)
	mux.HandleFunc("/api/v1/auth/logout", a.requireAuth(a.handleLogout))
	mux.HandleFunc("/api/v1/auth/me", a.requireAuth(a.handleMe))
	mux.HandleFunc("/api/v1/events", a.handleEvents)

	mux.HandleFunc("/api/v1/products", a.requireAuth(a.handleProducts, domain.ModuleProductList))
	mux.HandleFunc("/api/v1/products/", a.requireAuth(a.handleProductActions, domain.ModuleProductList))
	mux.HandleFunc("/api/v1/categories", a.requireAuth(a.handleCategories, domain.ModuleProductList))
	mux.HandleFunc("/api/v1/clients", a.requireAuth(a.handleClients, domain.ModuleOrders, domain.ModuleClients))
	mux.HandleFunc("/api/v1/clients/", a.requireAuth(a.handleClientActions, domain.ModuleClients))
	mux.HandleFunc("/api/v1/suppliers", a.requireAuth(a.handleSuppliers, domain.ModuleSuppliers))
	mux.HandleFunc("/api/v1/suppliers/", a.requireAuth(a.handleSupplierActions, domain.CanManageSuppliers))

	mux.HandleFunc("/api/v1/orders", a.requireAuth(a.handleOrders, domain.ModuleOrders))
	mux.HandleFunc("/api/v1/orders/", a.requireAuth(a.handleOrderActions, domain.ModuleOrders))
	mux.HandleFunc("/api/v1/payments/", a.requireAuth(a.handlePaymentActions, domain.ModuleOrders))

	mux.HandleFunc("/api/v1/purchase-orders", a.requireAuth(a.handlePurchaseOrders, domain.ModuleReplenishment))
	mux.HandleFunc("/api/v1/purchase-orders/", a.requireAuth(a.handlePurchaseOrderActions, domain.ModuleReplenishment))
	mux.HandleFunc("/api/v1/replenishment/suggestions", a.requireAuth(a.handleReplenishmentSuggestions, domain.ModuleReplenishment))
	mux.HandleFunc("/api/v1/replenishment/orders", a.requireAuth(a.handleReplenishmentOrders, domain.ModuleReplenishment))

	mux.HandleFunc("/api/v1/reports/sales", a.requireAuth(a.handleSalesReport, domain.ModuleReports))

	mux.HandleFunc("/api/v1/users", a.requireAuth(a.handleUsers, domain.CanManageUsers))
	mux.HandleFunc("/api/v1/users/", a.requireAuth(a.handleUserActions, domain.CanManageUsers))

	mux.HandleFunc("/api/v1/backup/export", a.requireAuth(a.handleBackupExport, domain.ModuleSettings))
	mux.HandleFunc("/api/v1/backup/restore", a.requireAuth(a.handleBackupRestore, domain.ModuleSettings))
	mux.HandleFunc("/api/v1/backup/settings", a.requireAuth(a.handleBackupSettings, domain.ModuleSettings))
	mux.HandleFunc("/api/v1/backup/last-run", a.requireAuth(a.handleBackupLastRun, domain.ModuleSettings))
	mux.HandleFunc("/api/v1/backup/reset", a.requireAuth(a.handleReset, domain.ModuleSettings))
	mux.HandleFunc("/api/v1/persistence/status", a.requireAuth(a.handlePersistenceStatus, domain.ModuleSettings))
	mux.HandleFunc("/api/v1/persistence/flush", a.requireAuth(a.handlePersistenceFlush, domain.ModuleSettings))

	return a.withMiddleware(mux)
}

// requireAuth admits requests carrying a valid bearer token whose user may
// use at least one of perms. The user's current name and role are read back
// from the document so role changes apply before the token expires.
func (a *API) requireAuth(next http.HandlerFunc, perms ...domain.Permission) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		actor, err := a.authenticate(strings.TrimSpace(authorization[len("Bearer "):]))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		if len(perms) > 0 && !isPermitted(actor.Role, perms) {
			writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func (a *API) authenticate(token string) (domain.Actor, error) {
	actor, err := a.auth.ParseToken(token)
	if err != nil {
		return domain.Actor{}, err
	}
	user, ok := a.service.User(actor.UserID)
	if !ok {
		return domain.Actor{}, errors.New("unknown user")
	}
	return domain.Actor{UserID: user.ID, Name: user.Name, Role: user.Role}, nil
}

func isPermitted(role domain.UserRole, perms []domain.Permission) bool {
	for _, perm := range perms {
		if role.Can(perm) {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"at":      time.Now().UTC().Format(time.RFC3339),
		"version": a.service.Version(),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := a.service.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, expiresAt, err := a.auth.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	log.Printf("[httpapi] login user=%s role=%s", user.ID, user.Role)

	writeJSON(w, http.StatusOK, domain.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		User:        user.View(),
		Permissions: user.Role.Permissions(),
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	a.service.Logout(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	actor, _ := service.ActorFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user":        domain.UserView{ID: actor.UserID, Name: actor.Name, Role: actor.Role},
		"permissions": actor.Role.Permissions(),
	})
}

// handleCSRFToken returns a stateless token valid for the current hour bucket.
// Clients send it in X-CSRF-Token on every mutating request.
func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"csrf_token": a.generateCSRFToken(),
	})
}

// Login is called before the client has fetched a CSRF token.
var csrfExemptPaths = []string{
	"/api/v1/auth/login",
}

func (a *API) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return true
	}
	for _, exempt := range csrfExemptPaths {
		if r.URL.Path == exempt {
			return true
		}
	}
	token := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if !a.validateCSRFToken(token) {
		writeError(w, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
		return false
	}
	return true
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if hasBody(r.Method) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			limit := int64(maxJSONBytes)
			if r.URL.Path == "/api/v1/backup/restore" {
				limit = maxBackupBytes
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if !a.checkCSRF(w, r) {
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPatch || method == http.MethodPut
}

// pathSegments splits the part of the path after prefix into its segments.
func pathSegments(r *http.Request, prefix string) []string {
	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if tail == "" {
		return nil
	}
	parts := strings.Split(tail, "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// statusFor maps service and store errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrConflict),
		errors.Is(err, service.ErrAlreadyReceived),
		errors.Is(err, service.ErrOrderCancelled),
		errors.Is(err, service.ErrOrderHasPayments),
		errors.Is(err, service.ErrOrderHasReturns),
		errors.Is(err, service.ErrRefundLocked),
		errors.Is(err, service.ErrDuplicateSKU),
		errors.Is(err, service.ErrLastAdmin):
		return http.StatusConflict
	case errors.Is(err, service.ErrNegativeStock),
		errors.Is(err, service.ErrPaymentOutOfRange),
		errors.Is(err, service.ErrReceiveExceedsOrder),
		errors.Is(err, service.ErrReturnExceedsOrder),
		errors.Is(err, service.ErrNothingToReplenish):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrInvalidTransaction):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx details stay in the log; 4xx messages are meant for the user.
	msg := err.Error()
	if status >= 500 {
		log.Printf("[httpapi] internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
