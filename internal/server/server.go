package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/transnet/rms/internal/audit"
	auditdomain "github.com/transnet/rms/internal/audit/domain"
	"github.com/transnet/rms/internal/authorization"
	"github.com/transnet/rms/internal/checkresult"
	crdomain "github.com/transnet/rms/internal/checkresult/domain"
	"github.com/transnet/rms/internal/config"
	"github.com/transnet/rms/internal/observability"
	obsmiddleware "github.com/transnet/rms/internal/observability/logger"
	obsmetrics "github.com/transnet/rms/internal/observability/metrics"
	obstracing "github.com/transnet/rms/internal/observability/tracing"
	"github.com/transnet/rms/internal/providers/pdf"
	"github.com/transnet/rms/internal/ratelimit"
	"github.com/transnet/rms/internal/reference"
	refdomain "github.com/transnet/rms/internal/reference/domain"
	"github.com/transnet/rms/internal/resourceledger"
	rldomain "github.com/transnet/rms/internal/resourceledger/domain"
	"github.com/transnet/rms/internal/serviceorder"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	"github.com/transnet/rms/internal/taskdetail"
	tddomain "github.com/transnet/rms/internal/taskdetail/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(authorization.NewEnforcer),
	fx.Provide(authorization.NewService),
	fx.Provide(pdf.New),
	audit.Module,
	reference.Module,
	serviceorder.Module,
	taskdetail.Module,
	resourceledger.Module,
	checkresult.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	addr := cfg.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	orderSvc  sodomain.Service
	taskSvc   tddomain.Service
	ledgerSvc rldomain.Service
	checkSvc  crdomain.Service
	refSvc    refdomain.Service
	auditSvc  auditdomain.Service
	authzSvc  authorization.Service

	pdfProvider  pdf.Provider
	writeLimiter *ratelimit.WriteLimiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	GenID *snowflake.Node

	OrderSvc  sodomain.Service
	TaskSvc   tddomain.Service
	LedgerSvc rldomain.Service
	CheckSvc  crdomain.Service
	RefSvc    refdomain.Service
	AuditSvc  auditdomain.Service
	AuthzSvc  authorization.Service

	PDFProvider  pdf.Provider
	WriteLimiter *ratelimit.WriteLimiter `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		orderSvc:     p.OrderSvc,
		taskSvc:      p.TaskSvc,
		ledgerSvc:    p.LedgerSvc,
		checkSvc:     p.CheckSvc,
		refSvc:       p.RefSvc,
		auditSvc:     p.AuditSvc,
		authzSvc:     p.AuthzSvc,
		pdfProvider:  p.PDFProvider,
		writeLimiter: p.WriteLimiter,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1", s.ActorContext())

	// -------- Service orders --------
	orders := api.Group("/service-orders")
	orders.GET("", s.requireAction(authorization.ObjectServiceOrder, authorization.ActionView), s.ListServiceOrders)
	orders.POST("", s.requireAction(authorization.ObjectServiceOrder, authorization.ActionCreate), s.WriteRateLimit("service_orders"), s.CreateServiceOrder)
	orders.POST("/bulk-delete", s.requireAction(authorization.ObjectServiceOrder, authorization.ActionDelete), s.WriteRateLimit("service_orders"), s.BulkDeleteServiceOrders)
	orders.GET("/:id", s.requireAction(authorization.ObjectServiceOrder, authorization.ActionView), s.GetServiceOrderByID)
	orders.GET("/:id/form", s.requireAction(authorization.ObjectServiceOrder, authorization.ActionView), s.GetServiceOrderForm)
	orders.PUT("/:id", s.requireAction(authorization.ObjectServiceOrder, authorization.ActionUpdate), s.WriteRateLimit("service_orders"), s.UpdateServiceOrder)
	orders.DELETE("/:id", s.requireAction(authorization.ObjectServiceOrder, authorization.ActionDelete), s.WriteRateLimit("service_orders"), s.DeleteServiceOrder)
	orders.GET("/:id/print", s.requireAction(authorization.ObjectServiceOrder, authorization.ActionOrderPrint), s.PrintServiceOrder)

	// -------- Check results --------
	orders.GET("/:id/check-result", s.requireAction(authorization.ObjectResourceCheck, authorization.ActionView), s.GetCheckResult)
	orders.PUT("/:id/check-result", s.requireAction(authorization.ObjectResourceCheck, authorization.ActionResourceCheckPut), s.WriteRateLimit("check_results"), s.PutCheckResult)

	// -------- Task details --------
	tasks := api.Group("/task-details")
	tasks.GET("", s.requireAction(authorization.ObjectTaskDetail, authorization.ActionView), s.ListTaskDetails)
	tasks.POST("", s.requireAction(authorization.ObjectTaskDetail, authorization.ActionCreate), s.WriteRateLimit("task_details"), s.CreateTaskDetail)
	tasks.POST("/bulk-delete", s.requireAction(authorization.ObjectTaskDetail, authorization.ActionDelete), s.WriteRateLimit("task_details"), s.BulkDeleteTaskDetails)
	tasks.GET("/:id", s.requireAction(authorization.ObjectTaskDetail, authorization.ActionView), s.GetTaskDetailByID)
	tasks.GET("/:id/form", s.requireAction(authorization.ObjectTaskDetail, authorization.ActionView), s.GetTaskDetailForm)
	tasks.PUT("/:id", s.requireAction(authorization.ObjectTaskDetail, authorization.ActionUpdate), s.WriteRateLimit("task_details"), s.UpdateTaskDetail)
	tasks.DELETE("/:id", s.requireAction(authorization.ObjectTaskDetail, authorization.ActionDelete), s.WriteRateLimit("task_details"), s.DeleteTaskDetail)

	// -------- Resource ledgers --------
	ledgers := api.Group("/resource-ledgers")
	ledgers.GET("", s.requireAction(authorization.ObjectResourceLedger, authorization.ActionView), s.ListResourceLedgers)
	ledgers.POST("", s.requireAction(authorization.ObjectResourceLedger, authorization.ActionCreate), s.WriteRateLimit("resource_ledgers"), s.CreateResourceLedger)
	ledgers.POST("/bulk-delete", s.requireAction(authorization.ObjectResourceLedger, authorization.ActionDelete), s.WriteRateLimit("resource_ledgers"), s.BulkDeleteResourceLedgers)
	ledgers.GET("/:id", s.requireAction(authorization.ObjectResourceLedger, authorization.ActionView), s.GetResourceLedgerByID)
	ledgers.PUT("/:id", s.requireAction(authorization.ObjectResourceLedger, authorization.ActionUpdate), s.WriteRateLimit("resource_ledgers"), s.UpdateResourceLedger)
	ledgers.DELETE("/:id", s.requireAction(authorization.ObjectResourceLedger, authorization.ActionDelete), s.WriteRateLimit("resource_ledgers"), s.DeleteResourceLedger)

	// -------- Reference data --------
	api.GET("/tenants", s.requireAction(authorization.ObjectTenant, authorization.ActionView), s.ListTenants)
	api.POST("/tenants", s.requireAction(authorization.ObjectTenant, authorization.ActionCreate), s.CreateTenant)
	api.GET("/tenants/:id", s.requireAction(authorization.ObjectTenant, authorization.ActionView), s.GetTenantByID)
	api.GET("/sites", s.requireAction(authorization.ObjectSite, authorization.ActionView), s.ListSites)
	api.POST("/sites", s.requireAction(authorization.ObjectSite, authorization.ActionCreate), s.CreateSite)
	api.GET("/sites/:id", s.requireAction(authorization.ObjectSite, authorization.ActionView), s.GetSiteByID)

	// -------- Audit trail --------
	api.GET("/audit-logs", s.requireAction(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)
}
