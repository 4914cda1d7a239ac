package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"recyclegame/internal/config"
	"recyclegame/internal/handlers"
	"recyclegame/internal/logger"
	"recyclegame/internal/middleware"
	"recyclegame/internal/repository"
	"recyclegame/internal/services/websocket"
)

// dynamicHTMLHandler serves /path as <static>/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" {
			path = "/index"
		}

		filePath := filepath.Join(staticDir, filepath.Clean("/"+path)+".html")

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers HTTP routes, static file serving and API endpoints,
// and wraps the mux with request logging.
func SetupRoutes(ctrl handlers.Controller, hub *websocket.HubService, results repository.ResultRepository, cfg *config.Config, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDirectory))))

	// Game endpoints
	mux.HandleFunc("/api/view", handlers.ViewWebsocketHandler(ctrl, hub, log))
	mux.HandleFunc("/api/control", handlers.ControlHandler(ctrl, log))
	mux.HandleFunc("/api/state", handlers.StateHandler(ctrl, log))
	mux.HandleFunc("/api/results", handlers.ResultsHandler(results, log))
	mux.HandleFunc("/api/results/stats", handlers.ResultStatsHandler(results, log))

	// Log endpoints
	mux.HandleFunc("/logs/info", handlers.LogsHandler(log, logger.InfoFile))
	mux.HandleFunc("/logs/warning", handlers.LogsHandler(log, logger.WarningFile))
	mux.HandleFunc("/logs/error", handlers.LogsHandler(log, logger.ErrorFile))

	mux.HandleFunc("/logs/info/clear", handlers.ClearLogsHandler(log, logger.InfoFile))
	mux.HandleFunc("/logs/warning/clear", handlers.ClearLogsHandler(log, logger.WarningFile))
	mux.HandleFunc("/logs/error/clear", handlers.ClearLogsHandler(log, logger.ErrorFile))

	// Automatic HTML handler mapping, for example /results -> <static>/results.html
	mux.HandleFunc("/", dynamicHTMLHandler(cfg.StaticDirectory))

	return middleware.LoggingMiddleware(log, mux)
}
