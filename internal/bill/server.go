package bill

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
)

// Server handles HTTP requests for bill extraction
type Server struct {
	service         *Service
	basicAuth       BasicAuth
	mux             *http.ServeMux
	maxDocumentSize int64
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, basicAuth BasicAuth, maxDocumentSize int64) *Server {
	return NewServerWithMux(service, basicAuth, maxDocumentSize, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, basicAuth BasicAuth, maxDocumentSize int64, mux *http.ServeMux) *Server {
	if maxDocumentSize <= 0 {
		maxDocumentSize = DefaultMaxDocumentSize
	}
	s := &Server{
		service:         service,
		basicAuth:       basicAuth,
		mux:             mux,
		maxDocumentSize: maxDocumentSize,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Bill Extractor"`)
			corsError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// registerRoutes registers all API routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /extract-bill-data", s.requireAuth(s.handleExtractBillData))

	s.mux.HandleFunc("GET /api/extractions/{id}/file", s.requireAuth(s.handleGetExtractionFile))
	s.mux.HandleFunc("GET /api/extractions/{id}", s.requireAuth(s.handleGetExtraction))
	s.mux.HandleFunc("DELETE /api/extractions/{id}", s.requireAuth(s.handleDeleteExtraction))
	s.mux.HandleFunc("GET /api/extractions", s.requireAuth(s.handleListExtractions))
	s.mux.HandleFunc("POST /api/extractions", s.requireAuth(s.handleUploadExtraction))
}

// Handler returns the mux wrapped with CORS handling
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.mux)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
