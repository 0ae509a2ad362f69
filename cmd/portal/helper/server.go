package helper

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"k8s.io/klog/v2"

	"github.com/b0ase/portal/internal"
	"github.com/b0ase/portal/internal/handler"
	"github.com/b0ase/portal/pkg/config"
	"github.com/b0ase/portal/pkg/cronjob"
)

// ServerRunner 封装服务器运行逻辑
type ServerRunner struct {
	backendConfig *config.Config
}

// NewServerRunner 创建新的ServerRunner实例
func NewServerRunner(backendConfig *config.Config) *ServerRunner {
	return &ServerRunner{
		backendConfig: backendConfig,
	}
}

// StartCron 启动定时任务
func (sr *ServerRunner) StartCron(registerConfig *handler.RegisterConfig) (*cronjob.CronJobManager, error) {
	cronMgr := cronjob.NewCronJobManager(registerConfig.Query, registerConfig.Alert)
	if err := cronMgr.Start(sr.backendConfig.Notify.DigestSpec); err != nil {
		return nil, err
	}
	return cronMgr, nil
}

var (
	readHeaderTimeout = 10 * time.Second // 设置读取头部的超时时间
	cancelTimeout     = 10 * time.Second // 设置取消操作的超时时间
	limiterCleanup    = time.Minute
)

// StartServer 启动HTTP服务器，收到 SIGINT/SIGTERM 后优雅退出
func (sr *ServerRunner) StartServer(registerConfig *handler.RegisterConfig) {
	klog.Info("starting server")
	backend := internal.Register(registerConfig)

	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	registerConfig.Limiter.StartCleanup(limiterCleanup, stopCleanup)

	// reference: https://gin-gonic.com/en/docs/examples/graceful-restart-or-stop
	srv := &http.Server{
		Addr:              sr.backendConfig.ServerAddr,
		Handler:           backend,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		// service connections
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.Fatalf("listen: %s\n", err)
		}
	}()
	klog.Infof("listening on %s", sr.backendConfig.ServerAddr)

	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	klog.Info("Shutdown Gin Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		klog.Info("Gin Server Shutdown:", err)
	}
	klog.Info("Gin Server exiting")
}
