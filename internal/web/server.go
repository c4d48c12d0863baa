// Package web serves the browser UI, the JSON API and the change feed.
package web

import (
	"bufio"
	"context"
	"embed"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/codefionn/aifm/internal/agent"
	"github.com/codefionn/aifm/internal/config"
	"github.com/codefionn/aifm/internal/consts"
	"github.com/codefionn/aifm/internal/fs"
	"github.com/codefionn/aifm/internal/logger"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

//go:embed static/*
var StaticFiles embed.FS

// Server represents the web server
type Server struct {
	cfg        *config.Config
	files      *fs.Service
	agent      *agent.Agent
	hub        *Hub
	watcher    *fs.Watcher
	router     *httprouter.Router
	httpServer *http.Server
	listener   net.Listener
	upgrader   websocket.Upgrader
	log        *logger.Logger
	stopOnce   sync.Once
}

// NewServer wires the API to files and ag and starts the websocket hub and
// the filesystem watcher. Close releases both.
func NewServer(cfg *config.Config, files *fs.Service, ag *agent.Agent) (*Server, error) {
	if err := mime.AddExtensionType(".js", "application/javascript"); err != nil {
		logger.Warn("Failed to register .js MIME type: %v", err)
	}

	s := &Server{
		cfg:    cfg,
		files:  files,
		agent:  ag,
		hub:    NewHub(),
		router: httprouter.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameHost,
		},
		log: logger.Global().WithPrefix("http"),
	}

	watcher, err := fs.NewWatcher(s.onFSEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}
	s.watcher = watcher
	if err := watcher.Watch(files.WorkingDirectory()); err != nil {
		s.log.Warn("Cannot watch %s: %v", files.WorkingDirectory(), err)
	}
	files.SetWatcher(watcher)
	files.Manager().OnChange(s.onDirectoryChange)

	s.setupRoutes()
	go s.hub.Run()
	return s, nil
}

func (s *Server) setupRoutes() {
	static, err := iofs.Sub(StaticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.ServeFiles("/static/*filepath", http.FS(static))

	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	s.router.GET("/api/files/list", s.handleList)
	s.router.GET("/api/files/content", s.handleContent)
	s.router.POST("/api/files/create-file", s.handleCreateFile)
	s.router.POST("/api/files/create-folder", s.handleCreateFolder)
	s.router.DELETE("/api/files/delete", s.handleDelete)
	s.router.POST("/api/files/create-structure", s.handleCreateStructure)
	s.router.POST("/api/files/set-directory", s.handleSetDirectory)
	s.router.GET("/api/files/current-directory", s.handleCurrentDirectory)
	s.router.POST("/api/files/explore-directory", s.handleExploreDirectory)

	s.router.POST("/api/ai/process", s.handleProcess)
	s.router.GET("/api/ai/history", s.handleHistory)
	s.router.GET("/api/ai/working-directory", s.handleWorkingDirectory)
}

// Handler returns the router wrapped with request logging
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.router)
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: consts.Timeout10Seconds,
		ErrorLog:          logger.StdLogger(s.log, slog.LevelError),
	}

	go func() {
		s.log.Info("Web server listening on %s", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error: %v", err)
		}
	}()
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// the hub and watcher.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping web server...")

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("failed to shutdown HTTP server: %w", shutdownErr)
		}
	}
	s.Close()
	return err
}

// Close stops the hub and the watcher without touching the listener
func (s *Server) Close() {
	s.stopOnce.Do(func() {
		s.hub.Stop()
		if err := s.watcher.Close(); err != nil {
			s.log.Warn("Failed to close watcher: %v", err)
		}
	})
}

// URL returns the address the browser should open
func (s *Server) URL() string {
	addr := s.cfg.Addr()
	if s.listener != nil {
		addr = s.listener.Addr().String()
	}
	return "http://" + addr + "/"
}

// OpenBrowser opens the default browser to the server URL
func (s *Server) OpenBrowser() error {
	url := s.URL()
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

func (s *Server) onFSEvent(ev fs.Event) {
	s.hub.Broadcast(&WebMessage{
		Type:      MessageTypeFSChange,
		Op:        ev.Op,
		Path:      ev.Path,
		Timestamp: time.Now(),
	})
}

func (s *Server) onDirectoryChange(dir string) {
	if err := s.watcher.Retarget(dir); err != nil {
		s.log.Warn("Cannot watch %s: %v", dir, err)
	}
	s.hub.Broadcast(&WebMessage{
		Type:      MessageTypeDirectoryChanged,
		Directory: dir,
		Timestamp: time.Now(),
	})
}

// handleWebSocket subscribes a browser to the change feed
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("Failed to upgrade WebSocket: %v", err)
		return
	}

	client := NewClient(s.hub, conn)
	client.send <- &WebMessage{
		Type:      MessageTypeHello,
		Directory: s.files.WorkingDirectory(),
		Timestamp: time.Now(),
	}
	s.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// handleIndex renders the file manager page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	page := Page(PageProps{
		Title:            "AI File Manager",
		WorkingDirectory: s.files.WorkingDirectory(),
		Model:            s.agent.ModelName(),
	})
	if err := page.Render(r.Context(), w); err != nil {
		s.log.Error("Failed to render page: %v", err)
	}
}

// handleHealth returns health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// sameHost accepts websocket upgrades from pages served by this server and
// from non-browser clients that send no Origin.
func sameHost(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
