package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tripshield/tripshield/internal/config"
	documentdomain "github.com/tripshield/tripshield/internal/document/domain"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
	"github.com/tripshield/tripshield/internal/metrics"
	paymentdomain "github.com/tripshield/tripshield/internal/payment/domain"
	quotedomain "github.com/tripshield/tripshield/internal/quote/domain"
	"github.com/tripshield/tripshield/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	return NewEngine(cfg, log, m)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
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
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	genID         *snowflake.Node
	quoteSvc      quotedomain.Service
	membershipSvc memberdomain.Service
	paymentSvc    paymentdomain.Service
	documentSvc   documentdomain.Service
	quoteLimiter  *ratelimit.QuoteLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	GenID         *snowflake.Node
	QuoteSvc      quotedomain.Service
	MembershipSvc memberdomain.Service
	PaymentSvc    paymentdomain.Service
	DocumentSvc   documentdomain.Service
	QuoteLimiter  *ratelimit.QuoteLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		genID:         p.GenID,
		quoteSvc:      p.QuoteSvc,
		membershipSvc: p.MembershipSvc,
		paymentSvc:    p.PaymentSvc,
		documentSvc:   p.DocumentSvc,
		quoteLimiter:  p.QuoteLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/quotes", s.CreateQuote)
	v1.GET("/quotes/:id", s.GetQuote)
	v1.POST("/checkout", s.CreateCheckout)

	v1.GET("/memberships/:id", s.GetMembership)
	v1.POST("/memberships/:id/documents/resend", s.ResendDocuments)
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/payment/:provider", s.PaymentWebhook)
}
