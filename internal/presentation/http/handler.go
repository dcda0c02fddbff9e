package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	appInventory "github.com/Zhima-Mochi/stockroom/internal/application/inventory"
	domain "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/jsonfile"
	"github.com/Zhima-Mochi/stockroom/internal/observability"
	"github.com/Zhima-Mochi/stockroom/internal/observability/logctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
)

// Handler exposes the inventory service over HTTP. Quantities and thresholds
// arrive as text and pass through the fallible conversion boundary, so the
// invalid-argument taxonomy surfaces as 400 responses.
type Handler struct {
	service      *appInventory.Service
	snapshotPath string
	lowThreshold int
	log          observability.Logger
	tel          observability.Observability
}

func NewHandler(service *appInventory.Service, snapshotPath string, lowThreshold int,
	logger observability.Logger, tel observability.Observability,
) *Handler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = observability.NopLogger()
	}
	if lowThreshold <= 0 {
		lowThreshold = domain.DefaultLowThreshold
	}
	return &Handler{
		service:      service,
		snapshotPath: snapshotPath,
		lowThreshold: lowThreshold,
		log:          baseLogger.With(observability.F("component", componentHTTPHandler)),
		tel:          tel,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// Wire each route with middlewares:
	// Trace → ObservabilityMiddleware (request logger) → Access log → Handler
	h.muxHandle(mux, http.MethodPost, "/items/add", h.handleAdd)
	h.muxHandle(mux, http.MethodPost, "/items/remove", h.handleRemove)
	h.muxHandle(mux, http.MethodGet, "/items/quantity", h.handleQuantity)
	h.muxHandle(mux, http.MethodGet, "/items/low", h.handleLow)
	h.muxHandle(mux, http.MethodPost, "/snapshot/save", h.handleSave)
	h.muxHandle(mux, http.MethodPost, "/snapshot/load", h.handleLoad)
	h.muxHandle(mux, http.MethodGet, "/report", h.handleReport)
	h.muxHandle(mux, http.MethodGet, "/health", h.handleHealth)

	return mux
}

func (h *Handler) muxHandle(mux *http.ServeMux, method, route string, handler http.HandlerFunc) {
	mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// Store stable route template for low-cardinality labels
		ctx := contextWithRoute(r.Context(), route)
		r = r.WithContext(ctx)

		wrapped := h.withTrace(
			ObservabilityMiddleware(
				logctx.FromOr(ctx, h.log),
				func(r *http.Request) string {
					return r.Header.Get(headerRequestID)
				},
				h.tel,
			)(
				h.withAccessLog(http.HandlerFunc(handler)),
			),
		)
		wrapped.ServeHTTP(w, r)
	})
}

type mutateItemRequest struct {
	Item     string `json:"item"`
	Quantity string `json:"quantity"`
}

type mutateItemResponse struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req mutateItemRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	qty, err := domain.ParseQuantity(req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.service.AddItem(r.Context(), req.Item, qty)

	writeJSON(w, http.StatusOK, mutateItemResponse{
		Item:     req.Item,
		Quantity: h.service.Quantity(r.Context(), req.Item),
	})
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req mutateItemRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	qty, err := domain.ParseQuantity(req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.service.RemoveItem(r.Context(), req.Item, qty)

	writeJSON(w, http.StatusOK, mutateItemResponse{
		Item:     req.Item,
		Quantity: h.service.Quantity(r.Context(), req.Item),
	})
}

type quantityResponse struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) handleQuantity(w http.ResponseWriter, r *http.Request) {
	item := r.URL.Query().Get("item")

	writeJSON(w, http.StatusOK, quantityResponse{
		Item:     item,
		Quantity: h.service.Quantity(r.Context(), item),
	})
}

type lowStockResponse struct {
	Threshold int      `json:"threshold"`
	Items     []string `json:"items"`
}

func (h *Handler) handleLow(w http.ResponseWriter, r *http.Request) {
	threshold := h.lowThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := domain.ParseQuantity(raw)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		threshold = parsed
	}

	writeJSON(w, http.StatusOK, lowStockResponse{
		Threshold: threshold,
		Items:     h.service.LowStock(r.Context(), threshold),
	})
}

type snapshotRequest struct {
	Path string `json:"path"`
}

type snapshotResponse struct {
	Path  string `json:"path"`
	Items int    `json:"items"`
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	path, err := h.snapshotPathFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.service.SaveSnapshot(r.Context(), path); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		Path:  path,
		Items: h.service.Len(r.Context()),
	})
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	path, err := h.snapshotPathFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.service.LoadSnapshot(r.Context(), path); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		Path:  path,
		Items: h.service.Len(r.Context()),
	})
}

func (h *Handler) snapshotPathFrom(r *http.Request) (string, error) {
	path := h.snapshotPath
	if r.Body == nil || r.ContentLength == 0 {
		return path, nil
	}
	var req snapshotRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		return "", err
	}
	if req.Path != "" {
		path = req.Path
	}
	return path, nil
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	var sb strings.Builder
	if err := h.service.Report(r.Context(), &sb); err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sb.String()))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withAccessLog writes a single access log after the handler completes.
// It relies on the request-scoped logger already injected by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromContext(r.Context())),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using OTel and W3C propagation.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer("stockroom.http")
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		route := routeFromContext(parentCtx)
		spanName := route
		if spanName == "unknown" {
			spanName = r.Method + " " + r.URL.Path
		}

		ctxWithSpan, span := tracer.Start(parentCtx,
			spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctxWithSpan))
	})
}

func decodeJSON(ctx context.Context, r *http.Request, dst any) error {
	_ = ctx
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, jsonfile.ErrBadSnapshot):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

type routeKey struct{}

// contextWithRoute stores the stable route template in the context so downstream
// metrics/logging can rely on low-cardinality values.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
