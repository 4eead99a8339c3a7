package reconcile

import (
	"context"
	"errors"
	"net/http"

	"github.com/dedicart/gateway/src/utils/config"
	"github.com/dedicart/gateway/src/utils/monitoring"
	"github.com/dedicart/gateway/src/utils/task"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rest API server
type Server struct {
	*task.Task

	Router     *gin.Engine
	httpServer *http.Server

	monitor monitoring.Monitor

	webhook *WebhookHandler
	consult *ConsultHandler
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	if config.IsDevelopment {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	self.Router = gin.New()
	self.Router.Use(gin.Recovery())

	self.httpServer = &http.Server{
		Addr:    config.RESTListenAddress,
		Handler: self.Router,
	}

	if config.Profiler.Enabled {
		pprof.Register(self.Router)
	}

	self.Task = task.NewTask(config, "rest-server").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	return
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	return self
}

func (self *Server) WithWebhookHandler(h *WebhookHandler) *Server {
	self.webhook = h
	return self
}

func (self *Server) WithConsultHandler(h *ConsultHandler) *Server {
	self.consult = h
	return self
}

func (self *Server) WithRoutes() *Server {
	self.Router.POST("/webhook", self.webhook.OnWebhook)

	v1 := self.Router.Group("v1")
	{
		v1.GET("payment-status", self.consult.OnGetPaymentStatus)
		v1.GET("intentions/:intention_id", self.consult.OnGetIntention)

		v1.GET("health", self.monitor.OnGetHealth)
		v1.GET("state", self.monitor.OnGetState)

		registry := prometheus.NewRegistry()
		registry.MustRegister(self.monitor.GetPrometheusCollector())
		v1.GET("metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return self
}

func (self *Server) run() (err error) {
	self.Log.WithField("addr", self.httpServer.Addr).Info("Started REST server")
	err = self.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	if err != nil {
		self.Log.WithError(err).Error("Failed to start REST server")
	}
	return
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
	}
}
