// Package httpx contiene el cliente HTTP JSON compartido por los clientes de APIs externas.
package httpx

import (
	"coin-market-service/internal/domain/fault"
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/metrics"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxErrorBody limita lo que se lee de un cuerpo de error
const maxErrorBody = 4 << 10

// JSONClient realiza GETs JSON contra un proveedor y clasifica los fallos con los tipos de fault
type JSONClient struct {
	service    string
	baseURL    string
	headers    http.Header
	httpClient *http.Client
}

// NewJSONClient crea un cliente. El deadline de cada request viene del contexto.
func NewJSONClient(service, baseURL string, headers http.Header) *JSONClient {
	if headers == nil {
		headers = http.Header{}
	}
	if headers.Get("Accept") == "" {
		headers.Set("Accept", "application/json")
	}
	return &JSONClient{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers:    headers,
		httpClient: &http.Client{},
	}
}

// Service nombre del proveedor para logs y métricas
func (c *JSONClient) Service() string {
	return c.service
}

// GetJSON hace GET baseURL+endpoint?query y decodifica la respuesta en out.
// metricEndpoint es la ruta sin identificadores, para no disparar la cardinalidad.
func (c *JSONClient) GetJSON(ctx context.Context, endpoint, metricEndpoint string, query url.Values, out interface{}) error {
	return c.DoJSON(ctx, http.MethodGet, endpoint, metricEndpoint, query, nil, out)
}

// DoJSON es GetJSON para cualquier método. header se suma a las cabeceras fijas del cliente;
// con out nil el cuerpo se descarta.
func (c *JSONClient) DoJSON(ctx context.Context, method, endpoint, metricEndpoint string, query url.Values, header http.Header, out interface{}) error {
	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", c.service, err)
	}
	for name, values := range c.headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	logging.ExternalAPI().RequestStarted(ctx, c.service, metricEndpoint, method)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	durationMs := float64(duration.Nanoseconds()) / 1e6

	if err != nil {
		netErr := &fault.NetworkError{Provider: c.service, Err: err}
		metrics.RecordExternalAPICall(c.service, metricEndpoint, 0, duration.Seconds())
		logging.ExternalAPI().RequestFailed(ctx, c.service, metricEndpoint, 0, netErr, durationMs)
		return netErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	metrics.RecordExternalAPICall(c.service, metricEndpoint, resp.StatusCode, duration.Seconds())

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.RecordRateLimited(c.service)
		rateErr := &fault.RateLimitError{Provider: c.service}
		logging.ExternalAPI().RequestFailed(ctx, c.service, metricEndpoint, resp.StatusCode, rateErr, durationMs)
		return rateErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		httpErr := &fault.HTTPError{Provider: c.service, Status: resp.StatusCode}
		logging.ExternalAPI().RequestFailed(ctx, c.service, metricEndpoint, resp.StatusCode, httpErr, durationMs)
		return httpErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
	} else if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		parseErr := &fault.ParseError{Provider: c.service, Err: err}
		logging.ExternalAPI().RequestFailed(ctx, c.service, metricEndpoint, resp.StatusCode, parseErr, durationMs)
		return parseErr
	}

	logging.ExternalRequest(ctx, c.service, metricEndpoint, durationMs, resp.StatusCode)
	return nil
}
