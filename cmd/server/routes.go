package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// setupRoutes registers all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	r := mux.NewRouter()

	route := func(path, name string, h http.HandlerFunc, methods ...string) {
		r.Handle(path, s.metrics.WrapHandler(name, h)).Methods(methods...)
	}

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)

	// Health endpoints
	route("/health", "health", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	// Settings
	route("/api/settings", "settings", s.handleGetSettings, http.MethodGet)
	route("/api/settings", "settings", s.handlePutSettings, http.MethodPut)
	route("/api/settings", "settings", s.handleResetSettings, http.MethodDelete)

	// Pipelines
	route("/api/generate", "generate", s.handleGenerate, http.MethodPost)
	route("/api/generate/chart.png", "generate_chart", s.handleGenerateChart, http.MethodGet)
	route("/api/analyze", "analyze", s.handleAnalyze, http.MethodPost)

	// Drawings
	route("/api/drawings", "drawings", s.handleListDrawings, http.MethodGet)
	route("/api/drawings", "drawings", s.handleSaveDrawing, http.MethodPost)
	route("/api/drawings/{name}", "drawing", s.handleGetDrawing, http.MethodGet)
	route("/api/drawings/{name}", "drawing", s.handleDeleteDrawing, http.MethodDelete)
	route("/api/drawings/{name}/analyze", "drawing_analyze", s.handleAnalyzeDrawing, http.MethodPost)

	// Device
	route("/api/device/send", "device_send", s.handleDeviceSend, http.MethodPost)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	var origins handlers.CORSOption
	if len(s.config.AllowedOrigins) == 0 || (len(s.config.AllowedOrigins) == 1 && s.config.AllowedOrigins[0] == "*") {
		origins = handlers.AllowedOrigins([]string{"*"})
	} else {
		origins = handlers.AllowedOrigins(s.config.AllowedOrigins)
	}
	cors := handlers.CORS(
		origins,
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
		handlers.MaxAge(3600),
	)

	return handlers.LoggingHandler(s.accessLog, cors(r))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.log.Infof("EKGLab server starting on %s", addr)
	s.log.Infof("   Database: %s", s.config.DBPath)
	s.log.Infof("   CORS Origins: %v", s.config.AllowedOrigins)
	s.log.Infof("Endpoints:")
	s.log.Infof("   GET    /health                        - Health check")
	s.log.Infof("   GET    /metrics                       - Prometheus metrics")
	s.log.Infof("   GET    /api/settings                  - Current settings")
	s.log.Infof("   PUT    /api/settings                  - Replace settings")
	s.log.Infof("   DELETE /api/settings                  - Reset settings")
	s.log.Infof("   POST   /api/generate                  - Synthesize and classify")
	s.log.Infof("   GET    /api/generate/chart.png        - Synthetic chart")
	s.log.Infof("   POST   /api/analyze                   - Classify a drawing")
	s.log.Infof("   GET    /api/drawings                  - List drawings")
	s.log.Infof("   POST   /api/drawings                  - Save a drawing")
	s.log.Infof("   GET    /api/drawings/{name}           - Get a drawing")
	s.log.Infof("   DELETE /api/drawings/{name}           - Delete a drawing")
	s.log.Infof("   POST   /api/drawings/{name}/analyze   - Classify a saved drawing")
	s.log.Infof("   POST   /api/device/send               - Stream samples to a device")

	return http.ListenAndServe(addr, s.setupRoutes())
}
