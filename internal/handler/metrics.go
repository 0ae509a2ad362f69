package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"github.com/b0ase/portal/dao/model"
	"github.com/b0ase/portal/dao/query"
)

type MetricsMgr struct {
	name  string
	query *query.Query
}

func NewMetricsMgr(conf *RegisterConfig) *MetricsMgr {
	return &MetricsMgr{
		name:  "metrics",
		query: conf.Query,
	}
}

func (mgr *MetricsMgr) GetName() string { return mgr.name }

// Register mounts the scrape endpoint; it sits outside the API prefix.
func (mgr *MetricsMgr) Register(metrics *gin.RouterGroup) {
	metrics.GET("", mgr.GetMetrics)
}

// 声明一个自定义的注册表
var registry *prometheus.Registry

// 声明一个prom HTTP Handler
var promHTTPHandler http.Handler

var (
	intakeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_client_requests_submitted_total",
		Help: "Client requests received by the intake endpoint, by result",
	}, []string{"result"})

	reviewCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_review_decisions_total",
		Help: "Admin review actions, by decision and outcome",
	}, []string{"decision", "outcome"})

	loginCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_project_login_attempts_total",
		Help: "Project login attempts, by result",
	}, []string{"result"})

	notificationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_notifications_total",
		Help: "Outgoing notifications, by kind and result",
	}, []string{"kind", "result"})

	// 待审批的申请数量，在每次抓取时刷新
	pendingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "portal_client_requests_pending",
		Help: "Client requests waiting for review",
	})
)

//nolint:gochecknoinits // The registry is process wide.
func init() {
	registry = prometheus.NewRegistry()
	promHTTPHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	registry.MustRegister(intakeCounter, reviewCounter, loginCounter, notificationCounter, pendingGauge)
}

// GetMetrics godoc
// @Summary Prometheus metrics
// @Description Refreshes the pending gauge and returns the registry in text format
// @Tags Metrics
// @Produce plain
// @Success 200 {string} string "metrics"
// @Router /metrics [get]
func (mgr *MetricsMgr) GetMetrics(c *gin.Context) {
	pending, err := mgr.query.ClientRequest.CountByStatus(c, model.ClientRequestStatusPending)
	if err != nil {
		klog.Errorf("count pending requests: %v", err)
	} else {
		pendingGauge.Set(float64(pending))
	}
	promHTTPHandler.ServeHTTP(c.Writer, c.Request)
}
