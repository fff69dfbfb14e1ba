// ABOUTME: Web UI server with embedded templates and a JSON policy API
// ABOUTME: Provides the dashboard, policy list and /metrics at localhost:8080
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/notify"
	"github.com/harperreed/insuretrack/storage"
	"github.com/harperreed/insuretrack/store"
	"github.com/harperreed/insuretrack/viz"
)

//go:embed templates/*
var templatesFS embed.FS

// shutdownTimeout bounds how long in-flight requests get once the context ends.
const shutdownTimeout = 5 * time.Second

// maxImportBytes caps uploaded import files.
const maxImportBytes = 10 << 20

// SMSHistory lists recent SMS attempts. *db.SMSLog implements it.
type SMSHistory interface {
	Recent(ctx context.Context, limit int) ([]models.SMSLogEntry, error)
}

// Options wires the server to the rest of the application. Store and Storage are required.
type Options struct {
	Store   *store.Store
	Storage *storage.Adapter
	SMS     *notify.SMS
	History SMSHistory
	Metrics *Metrics
	Logger  *log.Logger
	Now     func() time.Time
}

type Server struct {
	store     *store.Store
	storage   *storage.Adapter
	sms       *notify.SMS
	history   SMSHistory
	metrics   *Metrics
	logger    *log.Logger
	now       func() time.Time
	templates *template.Template
	generator *viz.GraphGenerator
}

func NewServer(opts Options) (*Server, error) {
	if opts.Store == nil || opts.Storage == nil {
		return nil, errors.New("web server needs a store and a storage adapter")
	}

	// Helper functions for templates
	funcMap := template.FuncMap{
		"money": viz.FormatINR,
		"badge": viz.RenewalBadge,
		"date": func(s string) string {
			t, err := dates.Parse(s)
			if err != nil {
				return s
			}
			return dates.FormatDate(t)
		},
		"percent": func(part, whole int) int {
			if whole == 0 {
				return 0
			}
			return part * 100 / whole
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		store:     opts.Store,
		storage:   opts.Storage,
		sms:       opts.SMS,
		history:   opts.History,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Now,
		templates: tmpl,
		generator: viz.NewGraphGenerator(opts.Store),
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(opts.Store)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Routes builds the router. Exposed for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handleDashboard)
	r.Get("/policies", s.handlePolicies)
	r.Get("/graphs", s.handleGraphs)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/policies", s.handleListPolicies)
		r.Post("/policies", s.handleCreatePolicy)
		r.Delete("/policies", s.handleClearPolicies)
		r.Get("/policies/{id}", s.handleGetPolicy)
		r.Patch("/policies/{id}", s.handleUpdatePolicy)
		r.Delete("/policies/{id}", s.handleDeletePolicy)

		r.Get("/stats", s.handleStats)
		r.Get("/alerts", s.handleAlerts)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/export.json", s.handleExportJSON)
		r.Post("/import", s.handleImport)

		r.Get("/sms-config", s.handleGetSMSConfig)
		r.Put("/sms-config", s.handlePutSMSConfig)
		r.Post("/sms/test", s.handleSMSTest)
		r.Get("/sms/history", s.handleSMSHistory)

		r.Get("/health", s.handleHealth)
	})
	return r
}

// observe logs each request and records its duration under the matched route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.metrics.ObserveRequest(route, r.Method, start)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", ww.Status(),
			"duration", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	s.logger.Info("web server stopped")
	return nil
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	// Execute the specified template (usually layout.html)
	// The data map includes ContentTemplate to specify which content block to render
	err := s.templates.ExecuteTemplate(w, name, data)
	if err != nil {
		s.logger.Error("template error", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

type categorySlice struct {
	Label   string
	Count   int
	Percent int
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	policies := s.store.Policies()
	now := s.now()
	stats := &viz.DashboardStats{
		Stats:       store.ComputeStats(policies, now),
		Alerts:      store.RenewalAlerts(policies, now, dates.DefaultDueSoonDays),
		GeneratedAt: now,
	}

	var pie []categorySlice
	for _, c := range models.Categories {
		count := stats.Stats.CategoryDistribution[string(c)]
		if count == 0 {
			continue
		}
		pie = append(pie, categorySlice{
			Label:   c.Label(),
			Count:   count,
			Percent: count * 100 / stats.Stats.TotalPolicies,
		})
	}

	data := map[string]interface{}{
		"Stats":           stats,
		"Categories":      pie,
		"Title":           "Dashboard",
		"ContentTemplate": "dashboard-content",
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handlePolicies(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data := map[string]interface{}{
		"Policies":        s.store.Find(q),
		"Query":           q,
		"Categories":      models.Categories,
		"SortOrders":      store.SortOrders,
		"Title":           "Policies",
		"ContentTemplate": "policies-content",
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleGraphs(w http.ResponseWriter, r *http.Request) {
	var (
		dot string
		err error
	)
	if name := r.URL.Query().Get("holder"); name != "" {
		dot, err = s.generator.GenerateHolderGraph(r.Context(), name)
	} else {
		dot, err = s.generator.GenerateRenewalGraph(r.Context())
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"DOT":             dot,
		"Holder":          r.URL.Query().Get("holder"),
		"Title":           "Graphs",
		"ContentTemplate": "graphs-content",
	}
	s.renderTemplate(w, "layout.html", data)
}
