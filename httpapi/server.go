package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/backup"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/config"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/database"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Server exposes the ERP demo endpoints and the backup subsystem over HTTP.
type Server struct {
	addr      string
	store     *database.Store
	backups   *backup.Service
	users     map[string]config.User
	runner    *Runner
	version   string
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	logger    zerolog.Logger
	startTime time.Time
}

type ServerParams struct {
	Addr    string
	Store   *database.Store
	Backups *backup.Service
	Users   []config.User
	Version string
	Logger  zerolog.Logger
}

func NewServer(p ServerParams) *Server {
	if p.Addr == "" {
		p.Addr = "127.0.0.1:8000"
	}

	users := make(map[string]config.User, len(p.Users))
	for _, u := range p.Users {
		users[u.Token] = u
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:    p.Addr,
		store:   p.Store,
		backups: p.Backups,
		users:   users,
		runner:  NewRunner(p.Logger),
		version: p.Version,
		ctx:     ctx,
		cancel:  cancel,
		logger:  p.Logger,
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog)

	r.GET("/api/health", s.handleHealth)

	authed := r.Group("/", s.authenticate)

	manage := authed.Group("/backup", s.requireRole(config.RoleAdmin, config.RoleManager))
	manage.POST("/create", s.handleBackupCreate)
	manage.GET("/list", s.handleBackupList)
	manage.POST("/verify", s.handleBackupVerify)

	admin := authed.Group("/backup", s.requireRole(config.RoleAdmin))
	admin.POST("/restore", s.handleBackupRestore)
	admin.GET("/restore/status", s.handleRestoreStatus)
	admin.GET("/download/:filename", s.handleBackupDownload)
	admin.DELETE("/:filename", s.handleBackupDelete)
	admin.POST("/schedule", s.handleBackupSchedule)

	api := authed.Group("/api")
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/companies", s.handleListCompanies)
	api.GET("/customers", s.handleListCustomers)
	api.GET("/suppliers", s.handleListSuppliers)
	api.GET("/items", s.handleListItems)
	api.GET("/sales", s.handleListSales)
	api.POST("/sales", s.handleCreateSale)
	api.GET("/accounting/ledger", s.handleListLedger)

	// Placeholder domain services.
	api.GET("/banking/status", s.stub("banking", "status checked"))
	api.POST("/banking/reconcile", s.stub("banking", "reconciliation queued"))
	api.POST("/customers/import", s.stub("customer", "import queued"))
	api.POST("/suppliers/settle", s.stub("supplier", "settlement queued"))
	api.POST("/items/sync", s.stub("item", "sync queued"))

	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.routes(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.startTime = time.Now()
	s.logger.Info().Str("addr", s.addr).Msg("http server listening")

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("http server stopped")
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server and waits for any background
// restore to finish.
func (s *Server) Stop() error {
	s.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.runner.Wait()
	return err
}

func (s *Server) requestLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	event := s.logger.Debug()
	if c.Writer.Status() >= http.StatusInternalServerError {
		event = s.logger.Warn()
	}
	event.
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Float64("seconds", time.Since(start).Seconds()).
		Msg("request")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.startTime).String(),
	})
}
