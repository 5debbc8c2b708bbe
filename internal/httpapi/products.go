package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/spsworld03/sps-bill-brew/internal/catalog"
	"github.com/spsworld03/sps-bill-brew/internal/domain"
)

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.service.ListProducts(r.Context())
		if err != nil {
			a.writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}

		product, err := a.service.AddProduct(r.Context(), req)
		if err != nil {
			a.writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": product})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/products/"), "/"))
	if code == "" || strings.Contains(code, "/") {
		a.writeError(w, http.StatusBadRequest, errors.New("product code required"))
		return
	}
	if r.Method != http.MethodDelete {
		a.writeMethodNotAllowed(w)
		return
	}

	if err := a.service.RemoveProduct(r.Context(), code); err != nil {
		status := statusFor(err)
		if errors.Is(err, catalog.ErrUnknownProduct) {
			status = http.StatusNotFound
		}
		a.writeError(w, status, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
