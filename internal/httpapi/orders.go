package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"aminashop/backend/internal/domain"
)

type archiveRequest struct {
	Archived bool `json:"archived"`
}

func (a *API) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		includeArchived := strings.EqualFold(r.URL.Query().Get("archived"), "true")
		orders, err := a.service.ListOrders(r.Context(), includeArchived)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		// Orders are stored oldest first; limit keeps the most recent ones.
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit := parsePositiveLimit(raw, len(orders), 1000)
			if limit < len(orders) {
				orders = orders[len(orders)-limit:]
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
	case http.MethodPost:
		var req domain.CreateOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		order, err := a.service.CreateOrder(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"order": order})
	default:
		writeMethodNotAllowed(w)
	}
}

// handleOrderActions serves /api/v1/orders/{id} and its sub-resources:
// delivery-status, cancel, archive, returns, payments, schedule and
// schedule/installments/{index}/pay.
func (a *API) handleOrderActions(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r, "/api/v1/orders/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, errors.New("order id required"))
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		a.handleOrder(w, r, id)
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "delivery-status":
		a.handleOrderDelivery(w, r, id)
	case len(parts) == 2 && parts[1] == "cancel":
		a.handleOrderCancel(w, r, id)
	case len(parts) == 2 && parts[1] == "archive":
		a.handleOrderArchive(w, r, id)
	case len(parts) == 2 && parts[1] == "returns":
		a.handleOrderReturns(w, r, id)
	case len(parts) == 2 && parts[1] == "payments":
		a.handleOrderPayments(w, r, id)
	case len(parts) == 2 && parts[1] == "schedule":
		a.handleOrderSchedule(w, r, id)
	case len(parts) == 5 && parts[1] == "schedule" && parts[2] == "installments" && parts[4] == "pay":
		index, err := strconv.Atoi(parts[3])
		if err != nil || index < 0 {
			writeError(w, http.StatusBadRequest, errors.New("invalid installment index"))
			return
		}
		a.handleInstallmentPay(w, r, id, index)
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown order action"))
	}
}

func (a *API) handleOrder(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		order, err := a.service.GetOrder(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"order": order})
	case http.MethodPatch, http.MethodPut:
		var req domain.UpdateOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		order, err := a.service.UpdateOrder(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"order": order})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleOrderDelivery(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost && r.Method != http.MethodPatch {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.DeliveryStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := a.service.UpdateOrderDeliveryStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (a *API) handleOrderCancel(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	order, err := a.service.CancelOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (a *API) handleOrderArchive(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req archiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := a.service.ArchiveOrder(r.Context(), id, req.Archived)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (a *API) handleOrderReturns(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		returns, err := a.service.ListReturns(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"returns": returns})
	case http.MethodPost:
		var req domain.ReturnRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		ret, err := a.service.CreateReturn(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"return": ret})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleOrderPayments(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		payments, err := a.service.ListPayments(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
	case http.MethodPost:
		var req domain.PaymentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		payment, err := a.service.AddPayment(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"payment": payment})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleOrderSchedule(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		schedule, err := a.service.GetPaymentSchedule(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"schedule": schedule})
	case http.MethodPost, http.MethodPut:
		var req domain.ScheduleRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		save, status := a.service.CreatePaymentSchedule, http.StatusCreated
		if r.Method == http.MethodPut {
			save, status = a.service.UpdatePaymentSchedule, http.StatusOK
		}
		schedule, err := save(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, status, map[string]any{"schedule": schedule})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleInstallmentPay(w http.ResponseWriter, r *http.Request, id string, index int) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.InstallmentPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	schedule, err := a.service.MarkInstallmentAsPaid(r.Context(), id, index, req.Method)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedule": schedule})
}

func (a *API) handlePaymentActions(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r, "/api/v1/payments/")
	if len(parts) != 1 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, errors.New("payment id required"))
		return
	}
	id := parts[0]

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var req domain.PaymentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		payment, err := a.service.UpdatePayment(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"payment": payment})
	case http.MethodDelete:
		if err := a.service.DeletePayment(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeMethodNotAllowed(w)
	}
}
