// Package server exposes the broker over HTTP using OSB-style routes.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-servicebroker/core"
)

// Option configures the broker HTTP server.
type Option func(*serverConfig)

type serverConfig struct {
	middlewares []func(http.Handler) http.Handler
	logger      glog.Logger
	catalog     []byte
	credentials *BasicCredentials
}

// WithMiddlewares appends middleware applied to every route.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithLogger sets the request logger.
func WithLogger(logger glog.Logger) Option {
	return func(cfg *serverConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithCatalogJSON sets the raw catalog document served on GET /v2/catalog.
func WithCatalogJSON(catalog []byte) Option {
	return func(cfg *serverConfig) {
		if len(catalog) > 0 {
			cfg.catalog = catalog
		}
	}
}

// WithBasicAuth gates the /v2 routes behind basic authentication.
func WithBasicAuth(credentials BasicCredentials) Option {
	return func(cfg *serverConfig) {
		cfg.credentials = &credentials
	}
}

// NewServer wires the broker services into a chi router.
func NewServer(
	provisioning *core.ProvisioningService,
	binding *core.BindingService,
	opts ...Option,
) *chi.Mux {
	_, defaultLogger := glog.Resolve("broker:http", nil, nil)
	cfg := &serverConfig{
		middlewares: []func(http.Handler) http.Handler{},
		logger:      glog.Ensure(defaultLogger),
		catalog:     defaultCatalogJSON,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	handlers := &brokerHandlers{
		provisioning: provisioning,
		binding:      binding,
		logger:       cfg.logger,
		catalog:      cfg.catalog,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	r.Get("/health", handlers.health)

	r.Route("/v2", func(r chi.Router) {
		if cfg.credentials != nil {
			r.Use(BasicAuth(*cfg.credentials))
		}
		r.Get("/catalog", handlers.catalogDocument)
		r.Route("/service_instances/{instanceId}", func(r chi.Router) {
			r.Put("/", handlers.provision)
			r.Delete("/", handlers.deprovision)
			r.Route("/service_bindings/{bindingId}", func(r chi.Router) {
				r.Put("/", handlers.bind)
				r.Delete("/", handlers.unbind)
			})
		})
	})

	return r
}

type brokerHandlers struct {
	provisioning *core.ProvisioningService
	binding      *core.BindingService
	logger       glog.Logger
	catalog      []byte
}

type provisionBody struct {
	OrganizationGUID string `json:"organization_guid"`
	SpaceGUID        string `json:"space_guid"`
}

type bindBody struct {
	AppGUID string `json:"app_guid"`
}

func (h *brokerHandlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *brokerHandlers) catalogDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.catalog)
}

func (h *brokerHandlers) provision(w http.ResponseWriter, r *http.Request) {
	var body provisionBody
	if err := decodeJSONBody(r, &body); err != nil {
		writeDescription(w, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := h.provisioning.Provision(r.Context(), core.ProvisionRequest{
		ServiceInstanceID: chi.URLParam(r, "instanceId"),
		OrgID:             body.OrganizationGUID,
		SpaceID:           body.SpaceGUID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	switch result.Outcome {
	case core.OutcomeCreated, core.OutcomeAlreadyExists:
		writeJSON(w, result.Outcome.HTTPStatus(), map[string]string{
			"dashboard_url": result.DashboardURL,
		})
	default:
		writeOutcome(w, result.Outcome, result.Message)
	}
}

func (h *brokerHandlers) deprovision(w http.ResponseWriter, r *http.Request) {
	result, err := h.provisioning.Deprovision(r.Context(), core.DeprovisionRequest{
		ServiceInstanceID: chi.URLParam(r, "instanceId"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOutcome(w, result.Outcome, result.Message)
}

func (h *brokerHandlers) bind(w http.ResponseWriter, r *http.Request) {
	var body bindBody
	if err := decodeJSONBody(r, &body); err != nil {
		writeDescription(w, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := h.binding.Bind(r.Context(), core.BindRequest{
		BindingID:         chi.URLParam(r, "bindingId"),
		AppID:             body.AppGUID,
		ServiceInstanceID: chi.URLParam(r, "instanceId"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if result.Outcome == core.OutcomeCreated && result.Credentials != nil {
		writeJSON(w, http.StatusCreated, map[string]any{
			"credentials": map[string]string{
				"username": result.Credentials.Username,
				"password": result.Credentials.Password,
			},
		})
		return
	}
	writeOutcome(w, result.Outcome, result.Message)
}

func (h *brokerHandlers) unbind(w http.ResponseWriter, r *http.Request) {
	result, err := h.binding.Unbind(r.Context(), core.UnbindRequest{
		BindingID: chi.URLParam(r, "bindingId"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOutcome(w, result.Outcome, result.Message)
}

func (h *brokerHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		if rich.Code > 0 {
			status = rich.Code
		}
		if rich.Message != "" {
			message = rich.Message
		}
	}
	if h.logger != nil {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeDescription(w, status, message)
}

func decodeJSONBody(r *http.Request, out any) error {
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(out); err != nil {
		return err
	}
	return nil
}

// writeOutcome renders business outcomes the way the OSB contract expects:
// a description on failures that carry one, an empty object otherwise.
func writeOutcome(w http.ResponseWriter, outcome core.Outcome, message string) {
	status := outcome.HTTPStatus()
	if message != "" && status >= http.StatusBadRequest {
		writeDescription(w, status, message)
		return
	}
	writeJSON(w, status, map[string]any{})
}

func writeDescription(w http.ResponseWriter, status int, description string) {
	writeJSON(w, status, map[string]string{"description": description})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
