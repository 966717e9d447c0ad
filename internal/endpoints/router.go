package endpoints

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erraggy/restparams/params"
)

// Echo is the body every endpoint returns for an accepted request.
type Echo struct {
	Endpoint string      `json:"endpoint"`
	Method   string      `json:"method"`
	Args     params.Args `json:"args"`
}

// NewRouter builds a router serving every endpoint of f, plus /metrics
// backed by reg. Validation outcomes are counted in reg with the endpoint
// name as the handler label.
func NewRouter(f *File, cfg Config, reg *prometheus.Registry, logger *slog.Logger) (*mux.Router, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	models := f.models()
	for i := range f.Endpoints {
		ep := &f.Endpoints[i]
		decls, err := ep.declarations(models)
		if err != nil {
			return nil, err
		}
		p, err := params.New(decls,
			params.WithLogger(params.NewSlogAdapter(logger.With("endpoint", ep.Name))),
			params.WithRegisterer(reg),
			params.WithHandlerName(ep.Name),
			params.WithStrictBool(cfg.StrictBool),
			params.WithMaxBodySize(cfg.MaxBodySize),
		)
		if err != nil {
			return nil, err
		}

		route := router.Handle(ep.Path, p.HTTPHandler(echo(ep.Name)))
		if len(ep.Methods) > 0 {
			route.Methods(ep.Methods...)
		}
		logger.Debug("registered endpoint", "endpoint", ep.Name, "path", ep.Path, "methods", ep.Methods)
	}

	router.NotFoundHandler = errorHandler(http.StatusNotFound)
	router.MethodNotAllowedHandler = errorHandler(http.StatusMethodNotAllowed)
	router.Use(accessLog(logger))
	return router, nil
}

func echo(name string) params.HandlerFunc {
	return func(_ context.Context, req *params.Request, args params.Args) *params.Response {
		return &params.Response{Body: Echo{Endpoint: name, Method: req.Method, Args: args}}
	}
}

func errorHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		params.WriteResponse(w, &params.Response{
			Status: status,
			Body:   params.ErrorBody{Error: http.StatusText(status)},
		})
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func accessLog(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start))
		})
	}
}
