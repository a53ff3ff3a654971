package api

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/korimako/wildlife/pkg/auth"
	"github.com/korimako/wildlife/pkg/httputil"
	"github.com/korimako/wildlife/pkg/middleware"
	"github.com/korimako/wildlife/pkg/observability"
	"github.com/korimako/wildlife/pkg/search"
	"github.com/korimako/wildlife/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the catalogue web pages and JSON APIs
type Server struct {
	router    *mux.Router
	store     store.Store
	search    *search.Service
	sessions  *auth.Manager
	logger    *observability.Logger
	metrics   *observability.Metrics
	templates *template.Template

	// rateLimit wraps the suggestion API when configured
	rateLimit func(http.Handler) http.Handler
}

// Option customizes server construction
type Option func(*Server)

// WithRateLimit applies rate limiting middleware to the suggestion API
func WithRateLimit(limit func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.rateLimit = limit
	}
}

// NewServer creates the web server and wires all routes
func NewServer(st store.Store, searchService *search.Service, sessions *auth.Manager,
	logger *observability.Logger, metrics *observability.Metrics, opts ...Option) *Server {

	s := &Server{
		router:    mux.NewRouter(),
		store:     st,
		search:    searchService,
		sessions:  sessions,
		logger:    logger,
		metrics:   metrics,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all page and API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.instrumentRoute)

	// Pages
	s.router.HandleFunc("/", s.homePage).Methods("GET")
	s.router.HandleFunc("/species", s.speciesPage).Methods("GET")
	s.router.HandleFunc("/favourites", s.favouritesPage).Methods("GET")
	s.router.HandleFunc("/about", s.aboutPage).Methods("GET")

	// Account routes
	s.router.HandleFunc("/register", s.registerPage).Methods("GET")
	s.router.HandleFunc("/register", s.handleRegister).Methods("POST")
	s.router.HandleFunc("/login", s.loginPage).Methods("GET")
	s.router.HandleFunc("/login", s.handleLogin).Methods("POST")
	s.router.HandleFunc("/logout", s.handleLogout).Methods("GET", "POST")

	// JSON APIs
	s.router.HandleFunc("/api/species", s.handleSpeciesAPI).Methods("GET")

	suggestions := search.NewHandler(s.search).SuggestionsHandler()
	if s.rateLimit != nil {
		suggestions = s.rateLimit(suggestions)
	}
	s.router.Handle("/api/search-suggestions", suggestions).Methods("GET")
}

// instrumentRoute records request metrics labelled by the matched route
// template, keeping label cardinality bounded
func (s *Server) instrumentRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		s.metrics.InstrumentHandler(path, next).ServeHTTP(w, r)
	})
}

// Handler returns the server's root handler wrapped in shared middleware
func (s *Server) Handler(sessionMW *middleware.SessionMiddleware) http.Handler {
	chain := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(s.logger),
		httputil.LoggingMiddleware(s.logger),
		sessionMW.Handler,
	)
	return chain(s.router)
}

// Router exposes the raw router, mainly for tests
func (s *Server) Router() *mux.Router {
	return s.router
}

// handleSpeciesAPI serves the full catalogue as JSON for the favourites page
func (s *Server) handleSpeciesAPI(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListSpecies(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list species for API")
		httputil.WriteInternalError(w, err)
		return
	}
	if records == nil {
		records = []store.Species{}
	}
	httputil.WriteSuccess(w, records)
}
