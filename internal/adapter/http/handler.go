package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"currency-exchange-service/internal/domain/model"
	"currency-exchange-service/internal/domain/ports"
	"currency-exchange-service/internal/metrics"
	"currency-exchange-service/internal/service"
	"currency-exchange-service/pkg/logger"
	"currency-exchange-service/pkg/utils"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type Handler struct {
	service ports.ExchangeService
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewHandler(service ports.ExchangeService, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		log:     log,
		metrics: metrics,
	}
}

func (h *Handler) GetExchangeRateHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.RateRequestsTotal.Inc()

	from := model.Currency(r.URL.Query().Get("fromCurrency"))
	to := model.Currency(r.URL.Query().Get("toCurrency"))

	if from == "" || to == "" {
		h.sendErrorResponse(w, r, http.StatusBadRequest, "missing required parameters: fromCurrency and toCurrency")
		return
	}

	rate, err := h.service.GetExchangeRate(r.Context(), from, to)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.sendSuccessResponse(w, r, utils.MoneyNumber(rate))
}

func (h *Handler) GetAllExchangeRatesHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.RateRequestsTotal.Inc()

	from := model.Currency(r.URL.Query().Get("fromCurrency"))
	if from == "" {
		h.sendErrorResponse(w, r, http.StatusBadRequest, "missing required parameter: fromCurrency")
		return
	}

	table, err := h.service.GetExchangeRates(r.Context(), from)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	rates := make(map[model.Currency]json.Number, table.Len())
	for _, code := range table.Codes() {
		rate, _ := table.Rate(code)
		rates[code] = utils.DecimalNumber(rate)
	}
	h.sendSuccessResponse(w, r, rates)
}

func (h *Handler) ConvertCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.ConversionRequestsTotal.Inc()

	from := model.Currency(r.URL.Query().Get("fromCurrency"))
	to := model.Currency(r.URL.Query().Get("toCurrency"))
	amountStr := r.URL.Query().Get("amount")

	if from == "" || to == "" || amountStr == "" {
		h.sendErrorResponse(w, r, http.StatusBadRequest, "missing required parameters: fromCurrency, toCurrency and amount")
		return
	}

	amount, ok := h.parseAmount(w, r, amountStr)
	if !ok {
		return
	}

	result, err := h.service.ConvertCurrency(r.Context(), model.ConversionRequest{
		FromCurrency: from,
		ToCurrency:   to,
		Amount:       amount,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.sendSuccessResponse(w, r, utils.MoneyNumber(result.ToAmount))
}

func (h *Handler) ConvertToMultipleHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.MultiConversionRequestsTotal.Inc()

	from := model.Currency(r.URL.Query().Get("fromCurrency"))
	amountStr := r.URL.Query().Get("amount")
	targets := parseCurrencyList(r.URL.Query()["toCurrencies"])

	if from == "" || amountStr == "" || len(targets) == 0 {
		h.sendErrorResponse(w, r, http.StatusBadRequest, "missing required parameters: fromCurrency, amount and toCurrencies")
		return
	}

	amount, ok := h.parseAmount(w, r, amountStr)
	if !ok {
		return
	}

	result, err := h.service.ConvertToMultiple(r.Context(), model.MultiConversionRequest{
		FromCurrency: from,
		Amount:       amount,
		ToCurrencies: targets,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	amounts := make(map[model.Currency]json.Number, len(result.Amounts))
	for code, value := range result.Amounts {
		amounts[code] = utils.MoneyNumber(value)
	}
	h.sendSuccessResponse(w, r, amounts)
}

func (h *Handler) parseAmount(w http.ResponseWriter, r *http.Request, amountStr string) (decimal.Decimal, bool) {
	amount, err := utils.ParseDecimal(amountStr)
	if err != nil {
		h.sendErrorResponse(w, r, http.StatusBadRequest, "invalid amount parameter")
		return decimal.Zero, false
	}
	return amount, true
}

// parseCurrencyList accepts both repeated parameters and comma separated
// values, keeping the caller's order.
func parseCurrencyList(values []string) []model.Currency {
	var out []model.Currency
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, model.Currency(part))
			}
		}
	}
	return out
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, r *http.Request, data interface{}) {
	response := Response{
		Success: true,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err, "request_id", GetRequestID(r.Context()))
	}
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	response := Response{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode error response", "error", err, "request_id", GetRequestID(r.Context()))
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	errorMessage := "internal server error"

	var argErr *service.ArgumentError
	switch {
	case errors.As(err, &argErr):
		statusCode = http.StatusBadRequest
		errorMessage = argErr.Message
	case errors.Is(err, service.ErrInvalidArgument):
		statusCode = http.StatusBadRequest
		errorMessage = err.Error()
	case errors.Is(err, service.ErrExternalAPIFailure):
		statusCode = http.StatusServiceUnavailable
		errorMessage = "external API failure"
	}

	h.log.Error("Service error", "error", err, "status_code", statusCode, "request_id", GetRequestID(r.Context()))
	h.sendErrorResponse(w, r, statusCode, errorMessage)
}
