package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spsworld03/sps-bill-brew/internal/domain"
	"github.com/spsworld03/sps-bill-brew/internal/export"
	"github.com/spsworld03/sps-bill-brew/internal/invoice"
	"github.com/spsworld03/sps-bill-brew/internal/service"
)

func (a *API) handleBills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		page := parsePositiveInt(query.Get("page"), 1, 0)
		perPage := parsePositiveInt(query.Get("per_page"), 8, 100)
		writeJSON(w, http.StatusOK, a.service.ListBills(page, perPage))
	case http.MethodPost:
		var draft domain.BillDraft
		if err := decodeJSON(r, &draft); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}

		result, err := a.service.IssueBill(r.Context(), draft)
		if err != nil {
			a.writeError(w, statusFor(err), err)
			return
		}
		if actor, ok := service.ActorFromContext(r.Context()); ok {
			a.logger.Debug("bill issued by operator", zap.String("bill_no", result.Bill.BillNumber), zap.String("operator", actor.Username))
		}
		writeJSON(w, http.StatusCreated, result)
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleBillActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/bills/"
	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if tail == "" {
		a.writeError(w, http.StatusBadRequest, errors.New("bill action required"))
		return
	}

	switch tail {
	case "next-number":
		if r.Method != http.MethodGet {
			a.writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bill_number": a.service.NextBillNumber()})
		return
	case "reload":
		if r.Method != http.MethodPost {
			a.writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": a.service.Reload(r.Context())})
		return
	case "export":
		if r.Method != http.MethodGet {
			a.writeMethodNotAllowed(w)
			return
		}
		a.handleExport(w, r)
		return
	}

	if strings.HasSuffix(tail, "/invoice") {
		if r.Method != http.MethodGet {
			a.writeMethodNotAllowed(w)
			return
		}
		billNo := strings.Trim(strings.TrimSuffix(tail, "/invoice"), "/")
		if billNo == "" {
			a.writeError(w, http.StatusBadRequest, errors.New("bill number required"))
			return
		}
		a.handleInvoice(w, billNo)
		return
	}

	a.writeError(w, http.StatusNotFound, errors.New("unknown bill action"))
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, a.service.Bills()); err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (a *API) handleInvoice(w http.ResponseWriter, billNo string) {
	bill, err := a.service.FindBill(billNo)
	if err != nil {
		a.writeError(w, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	if err := invoice.Render(&buf, a.shop, bill); err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
