package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/pprof"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/atikulmunna/trainlog/internal/aggregator"
	"github.com/atikulmunna/trainlog/internal/hub"
)

// Server exposes run statistics and finished reports over HTTP.
type Server struct {
	engine     *gin.Engine
	hub        *hub.Hub
	aggregator *aggregator.Aggregator
	reportDir  string
	port       string
}

// ReportInfo describes one report file in the output folder.
type ReportInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	SizeText string `json:"size_text"`
	Modified string `json:"modified"`
}

// New creates a web server serving reports from reportDir.
func New(h *hub.Hub, agg *aggregator.Aggregator, reportDir, port string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine:     engine,
		hub:        h,
		aggregator: agg,
		reportDir:  reportDir,
		port:       port,
	}

	s.setupRoutes()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		stats := s.aggregator.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  stats.Uptime,
			"runs":    stats.Runs,
			"dropped": s.hub.Dropped(),
		})
	})

	s.engine.GET("/api/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.aggregator.Snapshot())
	})

	s.engine.GET("/api/reports", s.listReports)
	s.engine.GET("/api/reports/:name", s.getReport)

	s.engine.GET("/ws", s.handleWebSocket)

	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

func (s *Server) listReports(c *gin.Context) {
	entries, err := os.ReadDir(s.reportDir)
	if errors.Is(err, fs.ErrNotExist) {
		c.JSON(http.StatusOK, []ReportInfo{})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	reports := make([]ReportInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		reports = append(reports, ReportInfo{
			Name:     e.Name(),
			Size:     info.Size(),
			SizeText: humanize.Bytes(uint64(info.Size())),
			Modified: humanize.Time(info.ModTime()),
		})
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Name < reports[j].Name })
	c.JSON(http.StatusOK, reports)
}

func (s *Server) getReport(c *gin.Context) {
	name := c.Param("name")
	if name != filepath.Base(name) || name == "." || name == ".." {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report name"})
		return
	}

	data, err := os.ReadFile(filepath.Join(s.reportDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

// Start runs the server until the context is cancelled, then shuts it down.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: ":" + s.port, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
