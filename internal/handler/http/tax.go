package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// cacheNamespaces lists what DELETE /cache may target; empty means all.
var cacheNamespaces = []string{"", "settings", "ter_category", "ter_rate", "ptkp", "ytd", "method"}

type TaxHandler interface {
	// Payslip flow
	CalculatePayslip(w http.ResponseWriter, r *http.Request)
	SubmitPeriod(w http.ResponseWriter, r *http.Request)

	// Stateless computations
	ComputePeriod(w http.ResponseWriter, r *http.Request)
	ComputeYearEnd(w http.ResponseWriter, r *http.Request)
	ComputeBPJS(w http.ResponseWriter, r *http.Request)

	// Cache maintenance
	RefreshCategory(w http.ResponseWriter, r *http.Request)
	RefreshYTD(w http.ResponseWriter, r *http.Request)
	ClearCache(w http.ResponseWriter, r *http.Request)
}

type taxHandlerImpl struct {
	taxService tax.TaxService
}

func NewTaxHandler(taxService tax.TaxService) TaxHandler {
	return &taxHandlerImpl{taxService: taxService}
}

type categoryResponse struct {
	TaxStatus   string          `json:"tax_status"`
	TERCategory tax.TERCategory `json:"ter_category"`
}

// ========== PAYSLIP ==========

func (h *taxHandlerImpl) CalculatePayslip(w http.ResponseWriter, r *http.Request) {
	var req tax.CalculatePayslipRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.taxService.CalculatePayslip(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *taxHandlerImpl) SubmitPeriod(w http.ResponseWriter, r *http.Request) {
	var req tax.SubmitPeriodRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.taxService.SubmitPeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Period submitted", result)
}

// ========== COMPUTATIONS ==========

func (h *taxHandlerImpl) ComputePeriod(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeComputeRequest(w, r)
	if !ok {
		return
	}

	period := req.Period.ToPeriod()
	result, err := h.taxService.ComputePeriodTax(r.Context(), &period, profileFor(req))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, tax.ComputePeriodResponse{Period: tax.NewPayPeriodResponse(period), Tax: result})
}

func (h *taxHandlerImpl) ComputeYearEnd(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeComputeRequest(w, r)
	if !ok {
		return
	}

	period := req.Period.ToPeriod()
	result, err := h.taxService.ComputeYearEndCorrection(r.Context(), &period, profileFor(req), req.YearToDate())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, tax.ComputePeriodResponse{Period: tax.NewPayPeriodResponse(period), Tax: result})
}

func (h *taxHandlerImpl) ComputeBPJS(w http.ResponseWriter, r *http.Request) {
	var req tax.ComputeBPJSRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.taxService.ComputeBPJS(r.Context(), req.Profile.ToProfile(), req.BaseSalary)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== CACHE ==========

func (h *taxHandlerImpl) RefreshCategory(w http.ResponseWriter, r *http.Request) {
	status := strings.ToUpper(chi.URLParam(r, "status"))
	if !validator.IsValidTaxStatus(status) {
		response.HandleError(w, validator.ValidationErrors{{Field: "status", Message: "must be one of TK0-TK3, K0-K3, HB0-HB3"}})
		return
	}

	category, err := h.taxService.RefreshCategoryMapping(r.Context(), status)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, categoryResponse{TaxStatus: status, TERCategory: category})
}

func (h *taxHandlerImpl) RefreshYTD(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		response.BadRequest(w, "Invalid year", nil)
		return
	}

	beforeMonth := 13
	if raw := r.URL.Query().Get("before_month"); raw != "" {
		if beforeMonth, err = strconv.Atoi(raw); err != nil {
			response.BadRequest(w, "Invalid before_month", nil)
			return
		}
	}

	result, err := h.taxService.RefreshYTD(r.Context(), employeeID, year, beforeMonth)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *taxHandlerImpl) ClearCache(w http.ResponseWriter, r *http.Request) {
	namespace := r.URL.Query().Get("namespace")
	if !validator.IsInSlice(namespace, cacheNamespaces) {
		response.HandleError(w, validator.ValidationErrors{{Field: "namespace", Message: "unknown cache namespace"}})
		return
	}

	h.taxService.ClearCache(r.Context(), namespace)
	response.SuccessWithMessage(w, "Cache cleared", nil)
}

func decodeComputeRequest(w http.ResponseWriter, r *http.Request) (tax.ComputePeriodRequest, bool) {
	var req tax.ComputePeriodRequest
	if !decodeBody(w, r, &req) {
		return req, false
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return req, false
	}
	return req, true
}

// decodeBody reports a wrongly typed field by its JSON path.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		response.HandleError(w, validator.ValidationErrors{{Field: typeErr.Field, Message: "must be of type " + typeErr.Type.String()}})
		return false
	}
	response.BadRequest(w, "Invalid request body", nil)
	return false
}

// profileFor lets the period's employee id stand in for an anonymous profile.
func profileFor(req tax.ComputePeriodRequest) tax.TaxpayerProfile {
	profile := req.Profile.ToProfile()
	if profile.EmployeeID == "" {
		profile.EmployeeID = req.Period.EmployeeID
	}
	return profile
}
