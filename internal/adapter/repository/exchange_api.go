package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"currency-exchange-service/internal/config"
	"currency-exchange-service/internal/domain/model"
	"currency-exchange-service/internal/domain/ports"
	"currency-exchange-service/internal/metrics"
	"currency-exchange-service/pkg/logger"
)

const (
	opListCurrencies = "list_currencies"
	opQuotes         = "quotes"
	opConvert        = "convert"
)

type ExchangeAPI struct {
	baseURL     string
	apiKey      string
	listPath    string
	quotesPath  string
	convertPath string
	httpClient  *http.Client
	log         *logger.Logger
	metrics     *metrics.Metrics
}

type apiError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

type envelope struct {
	Success *bool     `json:"success"`
	Error   *apiError `json:"error,omitempty"`
}

type listResponse struct {
	envelope
	Currencies map[string]string `json:"currencies"`
}

type quotesResponse struct {
	envelope
	Timestamp int64                      `json:"timestamp"`
	Source    string                     `json:"source"`
	Quotes    map[string]json.RawMessage `json:"quotes"`
}

type convertResponse struct {
	envelope
	Result json.RawMessage `json:"result"`
}

// failure is deferred to Convert: any body without a result, including an
// explicit success=false, means no conversion data.
func (r *convertResponse) failure() error {
	return nil
}

func NewExchangeAPI(cfg config.ExchangeAPIConfig, log *logger.Logger, m *metrics.Metrics) *ExchangeAPI {
	return &ExchangeAPI{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		listPath:    cfg.ListPath,
		quotesPath:  cfg.QuotesPath,
		convertPath: cfg.ConvertPath,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log:     log,
		metrics: m,
	}
}

func (e *ExchangeAPI) ListCurrencies(ctx context.Context) (model.CurrencyDirectory, error) {
	var resp listResponse
	if err := e.get(ctx, opListCurrencies, e.listPath, url.Values{}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Currencies) == 0 {
		return nil, fmt.Errorf("%w: currencies field missing or empty", ports.ErrProviderFailure)
	}

	directory := make(model.CurrencyDirectory, len(resp.Currencies))
	for code, name := range resp.Currencies {
		directory[model.Currency(code)] = name
	}
	return directory, nil
}

func (e *ExchangeAPI) FetchQuotes(ctx context.Context, base model.Currency) (map[string]string, error) {
	params := url.Values{}
	params.Set("source", base.String())

	var resp quotesResponse
	if err := e.get(ctx, opQuotes, e.quotesPath, params, &resp); err != nil {
		return nil, err
	}

	if resp.Quotes == nil {
		return nil, fmt.Errorf("%w: quotes field missing", ports.ErrProviderFailure)
	}

	quotes := make(map[string]string, len(resp.Quotes))
	for code, raw := range resp.Quotes {
		quotes[code] = rawNumber(raw)
	}
	return quotes, nil
}

func (e *ExchangeAPI) Convert(ctx context.Context, from, to model.Currency, amount decimal.Decimal) (string, error) {
	params := url.Values{}
	params.Set("from", from.String())
	params.Set("to", to.String())
	params.Set("amount", amount.String())

	var resp convertResponse
	if err := e.get(ctx, opConvert, e.convertPath, params, &resp); err != nil {
		return "", err
	}

	trimmed := bytes.TrimSpace(resp.Result)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if err := resp.envelope.failure(); err != nil {
			e.log.Warn("Provider rejected conversion", "from", from, "to", to, "error", err)
			return "", fmt.Errorf("%w: %v", ports.ErrNoResult, err)
		}
		return "", ports.ErrNoResult
	}
	return rawNumber(trimmed), nil
}

// get performs one provider round trip and decodes the body into out.
func (e *ExchangeAPI) get(ctx context.Context, operation, path string, params url.Values, out interface{ failure() error }) (err error) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveUpstream(operation, start, err)
		if err != nil {
			e.log.Error("Provider request failed", "operation", operation, "error", err)
		}
	}()

	if e.apiKey != "" {
		params.Set("access_key", e.apiKey)
	}
	endpoint := e.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ports.ErrProviderFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to send request: %v", ports.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: API returned non-OK status: %d", ports.ErrProviderFailure, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ports.ErrProviderFailure, err)
	}

	if err := out.failure(); err != nil {
		return err
	}

	e.log.Debug("Provider request succeeded", "operation", operation, "duration", time.Since(start))
	return nil
}

// failure reports a response the provider marked as unsuccessful. A missing
// success flag is accepted; only an explicit false fails.
func (env *envelope) failure() error {
	if env.Success == nil || *env.Success {
		return nil
	}
	if env.Error != nil && env.Error.Info != "" {
		return fmt.Errorf("%w: API reported failure: %s", ports.ErrProviderFailure, env.Error.Info)
	}
	return fmt.Errorf("%w: API reported failure", ports.ErrProviderFailure)
}

// rawNumber turns a JSON string or number literal into its textual value.
func rawNumber(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
