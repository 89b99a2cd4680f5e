package handlers

import (
	"coin-market-service/internal/application/dto"
	"context"
	"net/http"
	"time"
)

// ReadinessCheck es una dependencia verificada por /ready
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler maneja los endpoints de health check
type HealthHandler struct {
	checks  []ReadinessCheck
	timeout time.Duration
	now     func() time.Time
}

// NewHealthHandler crea una nueva instancia del health handler
func NewHealthHandler(checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 2 * time.Second,
		now:     time.Now,
	}
}

// Health verifies that the service is running. It does not touch dependencies.
// @Summary Basic health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(r.Context(), w, http.StatusOK, dto.HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
		Services:  map[string]string{"service": "running"},
	})
}

// Ready ejecuta cada ReadinessCheck y responde 503 si alguna falla
// @Summary Readiness check
// @Description Runs every registered dependency check.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	services := map[string]string{"service": "ready"}
	status, code := "ready", http.StatusOK

	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			services[check.Name] = "error: " + err.Error()
			status, code = "unhealthy", http.StatusServiceUnavailable
			continue
		}
		services[check.Name] = "ready"
	}

	writeJSONResponse(r.Context(), w, code, dto.HealthResponse{
		Status:    status,
		Timestamp: h.now().UTC(),
		Services:  services,
	})
}
