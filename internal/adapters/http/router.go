package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Arctuition/documenso/internal/core/ports"
	"github.com/Arctuition/documenso/internal/observability/metrics"
)

const serviceName = "signing-api"

type Router struct {
	sessions  ports.SessionLoader
	signer    ports.FieldSigner
	unsigner  ports.FieldUnsigner
	completer ports.DocumentCompleter
	reporter  ports.AuditReporter

	metrics       *metrics.HTTPServerMetrics
	adminAPIToken string

	rateLimitRPS   float64
	rateLimitBurst int
	maxConcurrent  int
	queueTimeout   time.Duration
}

type RouterOptions struct {
	AdminAPIToken  string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int
	QueueTimeout   time.Duration
}

func NewRouter(
	sessions ports.SessionLoader,
	signer ports.FieldSigner,
	unsigner ports.FieldUnsigner,
	completer ports.DocumentCompleter,
	reporter ports.AuditReporter,
	m *metrics.HTTPServerMetrics,
	opts RouterOptions,
) *Router {
	return &Router{
		sessions:       sessions,
		signer:         signer,
		unsigner:       unsigner,
		completer:      completer,
		reporter:       reporter,
		metrics:        m,
		adminAPIToken:  opts.AdminAPIToken,
		rateLimitRPS:   opts.RateLimitRPS,
		rateLimitBurst: opts.RateLimitBurst,
		maxConcurrent:  opts.MaxConcurrent,
		queueTimeout:   opts.QueueTimeout,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /v1/sign/{token}", rt.getSession)
	mux.HandleFunc("POST /v1/sign/{token}/fields/{fieldId}", rt.signField)
	mux.HandleFunc("DELETE /v1/sign/{token}/fields/{fieldId}", rt.unsignField)
	mux.HandleFunc("POST /v1/sign/{token}/complete", rt.completeSigning)
	mux.HandleFunc("GET /v1/documents/{id}/audit-report", rt.auditReport)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.maxConcurrent, rt.queueTimeout)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	handler = rt.metricsMiddleware(handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) getSession(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "signing token is required"})
		return
	}

	session, err := rt.sessions.LoadSession(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.AddAutoSignedFields(serviceName, session.AutoSignedFields)
	}
	writeJSON(w, http.StatusOK, session)
}

type signFieldRequest struct {
	Value    string `json:"value"`
	IsBase64 bool   `json:"is_base64"`
}

func (rt *Router) signField(w http.ResponseWriter, r *http.Request) {
	token, fieldID, ok := signingPathParams(w, r)
	if !ok {
		return
	}

	var req signFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	field, err := rt.signer.SignField(r.Context(), token, fieldID, req.Value, req.IsBase64)
	if rt.metrics != nil {
		fieldType := "unknown"
		if field != nil {
			fieldType = string(field.Type)
		}
		rt.metrics.ObserveFieldMutation(serviceName, "sign", fieldType, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, field)
}

func (rt *Router) unsignField(w http.ResponseWriter, r *http.Request) {
	token, fieldID, ok := signingPathParams(w, r)
	if !ok {
		return
	}

	err := rt.unsigner.UnsignField(r.Context(), token, fieldID)
	if rt.metrics != nil {
		rt.metrics.ObserveFieldMutation(serviceName, "unsign", "unknown", err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) completeSigning(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "signing token is required"})
		return
	}

	recipient, err := rt.completer.CompleteDocument(r.Context(), token)
	if rt.metrics != nil {
		rt.metrics.ObserveCompletion(serviceName, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipient)
}

func (rt *Router) auditReport(w http.ResponseWriter, r *http.Request) {
	if !isAuthorizedBearerHeader(r.Header.Get("Authorization"), rt.adminAPIToken) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	documentID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id must be an integer"})
		return
	}

	report, err := rt.reporter.ExportAuditReport(r.Context(), documentID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("audit-report-%d.xlsx", documentID)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report)
}

func signingPathParams(w http.ResponseWriter, r *http.Request) (token string, fieldID int64, ok bool) {
	token = strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "signing token is required"})
		return "", 0, false
	}
	fieldID, err := strconv.ParseInt(r.PathValue("fieldId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "field id must be an integer"})
		return "", 0, false
	}
	return token, fieldID, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
