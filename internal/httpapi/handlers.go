package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shopos/backend/internal/domain"
	"shopos/backend/internal/export"
	"shopos/backend/internal/service"
	"shopos/backend/internal/session"
	"shopos/backend/internal/store"
)

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	if !a.sessionLimit.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many session requests"))
		return
	}
	resp, err := a.auth.Open()
	if err != nil {
		a.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, describe(sessionFromContext(r).State))
}

func (a *API) handleElevate(w http.ResponseWriter, r *http.Request) {
	if !a.pinLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many pin attempts"))
		return
	}

	var req domain.PINRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	current := sessionFromContext(r)
	valid := a.auth.ValidatePIN(req.PIN)
	if !valid {
		a.log.Warn("rejected pin", zap.String("session", current.ID), zap.String("client", clientKey(r)))
	}
	a.transition(w, r, session.Elevate{PINValid: valid})
}

func (a *API) handleDemote(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, session.Demote{})
}

func (a *API) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req domain.NavigateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := session.ParseView(req.View)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.transition(w, r, session.Navigate{View: view})
}

// transition runs a session action and reissues the token for the new state.
func (a *API) transition(w http.ResponseWriter, r *http.Request, action session.Action) {
	current := sessionFromContext(r)
	next, err := session.Reduce(current.State, action)
	if err != nil {
		a.fail(w, err)
		return
	}
	resp, err := a.auth.Issue(Session{ID: current.ID, State: next})
	if err != nil {
		a.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"products": a.service.ListProducts(r.Context())})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := a.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := a.service.AddProduct(r.Context(), req)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (a *API) handleSetField(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.service.SetField(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"customers": a.service.ListCustomers(r.Context())})
}

// handleImportCustomers accepts a JSON name list, a plain-text list with one
// name per line, or a spreadsheet uploaded in the "file" form field.
func (a *API) handleImportCustomers(w http.ResponseWriter, r *http.Request) {
	var names []string
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("file field required: %w", err))
			return
		}
		defer file.Close()
		names, err = export.ParseCustomerSheet(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	case strings.HasPrefix(contentType, "text/plain"):
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		names = export.ParseCustomerText(string(raw))
	default:
		var req domain.CustomerImportRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		names = req.Names
	}

	resp, err := a.service.ImportCustomers(r.Context(), names)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	a.respondCart(w, r)(a.service.Cart(r.Context()))
}

func (a *API) handleClearCart(w http.ResponseWriter, r *http.Request) {
	a.respondCart(w, r)(a.service.ClearCart(r.Context()))
}

func (a *API) handleAddLine(w http.ResponseWriter, r *http.Request) {
	var req domain.CartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.respondCart(w, r)(a.service.AddLine(r.Context(), req))
}

func (a *API) handleChangeQuantity(w http.ResponseWriter, r *http.Request) {
	var req domain.CartQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.respondCart(w, r)(a.service.ChangeQuantity(r.Context(), chi.URLParam(r, "lineID"), req.Delta))
}

func (a *API) respondCart(w http.ResponseWriter, r *http.Request) func(domain.Cart, error) {
	return func(cart domain.Cart, err error) {
		if err != nil {
			a.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
	}
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.service.FinalizeSale(r.Context(), req)
	if err != nil {
		a.fail(w, err)
		return
	}
	status := http.StatusCreated
	if !resp.Finalized {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (a *API) handleListDebtors(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	debtors, err := a.service.ListDebtors(r.Context(), !all)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"debtors":          debtors,
		"outstanding_debt": a.service.OutstandingDebt(r.Context()),
	})
}

func (a *API) handleGetDebtor(w http.ResponseWriter, r *http.Request) {
	debtor, err := a.service.GetDebtor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"debtor": debtor})
}

func (a *API) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	debtor, err := a.service.RecordPayment(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"debtor": debtor})
}

func (a *API) handleSetMobile(w http.ResponseWriter, r *http.Request) {
	var req domain.MobileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	debtor, err := a.service.SetMobile(r.Context(), chi.URLParam(r, "id"), req.Mobile)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"debtor": debtor})
}

func reportQuery(r *http.Request) (domain.ReportQuery, error) {
	window, err := service.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		return domain.ReportQuery{}, err
	}
	return domain.ReportQuery{Window: window, Search: strings.TrimSpace(r.URL.Query().Get("q"))}, nil
}

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	q, err := reportQuery(r)
	if err != nil {
		a.fail(w, err)
		return
	}
	sales, err := a.service.Sales(r.Context(), q)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sales": sales})
}

func (a *API) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, err := reportQuery(r)
	if err != nil {
		a.fail(w, err)
		return
	}
	summary, err := a.service.Summary(r.Context(), q)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleTrend(w http.ResponseWriter, r *http.Request) {
	points, err := a.service.Trend(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trend": points})
}

type renderer func(io.Writer) error

type reportFormat struct {
	ext         string
	contentType string
}

var reportFormats = map[string]reportFormat{
	"csv":  {ext: "csv", contentType: "text/csv; charset=utf-8"},
	"html": {ext: "html", contentType: "text/html; charset=utf-8"},
	"xlsx": {ext: "xlsx", contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
}

func (a *API) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	q, err := reportQuery(r)
	if err != nil {
		a.fail(w, err)
		return
	}
	summary, err := a.service.Summary(r.Context(), q)
	if err != nil {
		a.fail(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, summary)
		return
	}
	rf, ok := reportFormats[format]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: unsupported format %q", store.ErrInvalidInput, format))
		return
	}

	renderers := map[string]renderer{
		"csv":  func(out io.Writer) error { return export.DailyCSV(out, summary, a.meta) },
		"html": func(out io.Writer) error { return export.DailyHTML(out, summary, a.meta) },
		"xlsx": func(out io.Writer) error { return export.DailyXLSX(out, summary, a.meta) },
	}
	a.download(w, r, rf, export.DailyFilename(summary, a.meta, rf.ext), renderers[format])
}

func (a *API) handleProductReport(w http.ResponseWriter, r *http.Request) {
	window, err := service.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		a.fail(w, err)
		return
	}
	report, err := a.service.ProductReport(r.Context(), chi.URLParam(r, "name"), window)
	if err != nil {
		a.fail(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, report)
		return
	}
	rf, ok := reportFormats[format]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: unsupported format %q", store.ErrInvalidInput, format))
		return
	}

	renderers := map[string]renderer{
		"csv":  func(out io.Writer) error { return export.ProductCSV(out, report) },
		"html": func(out io.Writer) error { return export.ProductHTML(out, report) },
		"xlsx": func(out io.Writer) error { return export.ProductXLSX(out, report) },
	}
	a.download(w, r, rf, export.ProductFilename(report, rf.ext), renderers[format])
}

// download renders into a buffer first so a failed render still yields a
// clean JSON error instead of a truncated file.
func (a *API) download(w http.ResponseWriter, r *http.Request, format reportFormat, filename string, render renderer) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		a.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.contentType)
	if format.ext != "html" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
