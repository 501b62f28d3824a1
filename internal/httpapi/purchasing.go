package httpapi

import (
	"errors"
	"net/http"

	"aminashop/backend/internal/domain"
)

func (a *API) handlePurchaseOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		orders, err := a.service.ListPurchaseOrders(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"purchaseOrders": orders})
	case http.MethodPost:
		var req domain.PurchaseOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		po, err := a.service.AddPurchaseOrder(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"purchaseOrder": po})
	default:
		writeMethodNotAllowed(w)
	}
}

// handlePurchaseOrderActions serves /api/v1/purchase-orders/{id}, its
// receive action and its supplier payments.
func (a *API) handlePurchaseOrderActions(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r, "/api/v1/purchase-orders/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, errors.New("purchase order id required"))
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		a.handlePurchaseOrder(w, r, id)
	case len(parts) == 2 && parts[1] == "receive":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req domain.ReceiveRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		po, err := a.service.ReceivePurchaseOrderItems(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"purchaseOrder": po})
	case len(parts) == 2 && parts[1] == "payments":
		a.handleSupplierPayments(w, r, id)
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown purchase order action"))
	}
}

func (a *API) handlePurchaseOrder(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		po, err := a.service.GetPurchaseOrder(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"purchaseOrder": po})
	case http.MethodPatch, http.MethodPut:
		var req domain.PurchaseOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		po, err := a.service.UpdatePurchaseOrder(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"purchaseOrder": po})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleSupplierPayments(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		payments, err := a.service.ListSupplierPayments(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
	case http.MethodPost:
		var req domain.SupplierPaymentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		payment, err := a.service.AddSupplierPayment(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"payment": payment})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleReplenishmentSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	suggestions, err := a.service.ReplenishmentSuggestions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suppliers": suggestions})
}

func (a *API) handleReplenishmentOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.ReplenishmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	orders, err := a.service.GenerateReplenishmentOrders(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"purchaseOrders": orders})
}
