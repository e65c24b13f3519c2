/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package server

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/admission"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/config"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/eventbus"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/executor"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/handlers"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/metrics"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/options"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/queues"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/registry"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/resolver"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/scheduler"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/storage"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/workerpool"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	opts       *options.Options
	httpServer *http.Server
	engine     *scheduler.Engine
	pool       *workerpool.Pool
	handler    *handlers.Handler
	ctx        context.Context
	cancel     context.CancelFunc
	isInited   bool
}

func NewServer() (*Server, error) {
	ctx, cancel := signalContext()
	s := &Server{
		opts:   &options.Options{},
		ctx:    ctx,
		cancel: cancel,
	}
	if err := s.init(); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func (s *Server) init() error {
	gin.SetMode(gin.ReleaseMode)
	var err error
	if err = s.opts.InitFlags(); err != nil {
		klog.ErrorS(err, "failed to parse flags")
		return err
	}
	if err = s.initLogs(); err != nil {
		klog.ErrorS(err, "failed to init logs")
		return err
	}
	if err = s.initConfig(); err != nil {
		klog.ErrorS(err, "failed to init config")
		return err
	}
	if err = s.initScheduler(); err != nil {
		klog.ErrorS(err, "failed to init scheduler")
		return err
	}
	s.isInited = true
	return nil
}

func (s *Server) Start() {
	if !s.isInited {
		klog.Errorf("please init the scheduler server first")
		return
	}
	klog.Infof("starting scheduler-server")
	s.pool.Start(s.ctx)
	s.engine.Start(s.ctx)

	go func() {
		if err := s.startHttpServer(); err != nil {
			klog.ErrorS(err, "failed to start http-server")
			os.Exit(-1)
		}
	}()

	<-s.ctx.Done()
	s.Stop()
}

// Stop drains the HTTP surface first so no new work arrives while the
// engine and pool wind down.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			klog.ErrorS(err, "failed to shutdown http-server")
		}
	}
	s.engine.Stop()
	s.pool.Stop()
	s.cancel()
	klog.Info("scheduler-server is stopped")
	klog.Flush()
}

func (s *Server) initLogs() error {
	klog.InitFlags(nil)
	_ = flag.Set("log_file", s.opts.LogfilePath)
	_ = flag.Set("alsologtostderr", "true")
	_ = flag.Set("logtostderr", "false")
	_ = flag.Set("skip_log_headers", "true")
	if s.opts.LogFileSize != 0 {
		_ = flag.Set("log_file_max_size", strconv.Itoa(s.opts.LogFileSize))
	}
	flag.Parse()
	return nil
}

func (s *Server) initConfig() error {
	if s.opts.Config == "" {
		return config.LoadConfig("")
	}
	fullPath, err := filepath.Abs(s.opts.Config)
	if err != nil {
		return err
	}
	if err = config.LoadConfig(fullPath); err != nil {
		return fmt.Errorf("config path: %s, err: %v", fullPath, err)
	}
	return nil
}

// initScheduler wires the scheduling core: result store, simulated
// executors, registry, admission, branch queues, dependency resolver,
// event bus, worker pool and the engine that drives them.
func (s *Server) initScheduler() error {
	store, err := storage.NewStore(config.GetResultStoragePath())
	if err != nil {
		return err
	}
	tileDelay := time.Duration(config.GetExecutorTileDelayMs()) * time.Millisecond
	table := executor.NewSimulatedTable(store, tileDelay)

	maxWorkers := config.GetMaxWorkers()
	reg := registry.NewRegistry()
	adm := admission.NewManager(config.GetMaxActiveUsers())
	q := queues.NewManager()
	res := resolver.NewResolver()
	bus := eventbus.NewBus(config.GetEventMailboxSize())
	s.pool = workerpool.NewPool(table, maxWorkers)
	s.engine = scheduler.NewEngine(reg, adm, q, res, s.pool, bus, maxWorkers)

	window := time.Duration(config.GetLatencyWindowSeconds()) * time.Second
	view := metrics.NewView(reg, q, adm, maxWorkers, window, s.engine.Healthy)
	s.handler = handlers.NewHandler(s.engine, store, view, bus)
	klog.Infof("scheduler initialized, maxWorkers: %d, maxActiveUsers: %d, resultPath: %s",
		maxWorkers, config.GetMaxActiveUsers(), config.GetResultStoragePath())
	return nil
}

func (s *Server) startHttpServer() error {
	if config.GetServerPort() <= 0 {
		return fmt.Errorf("the scheduler server port is not defined")
	}
	handler := handlers.InitHttpHandlers(s.handler)
	addr := fmt.Sprintf(":%d", config.GetServerPort())
	s.httpServer = &http.Server{Addr: addr, Handler: handler}
	klog.Infof("http-server listen port: %d", config.GetServerPort())
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		klog.ErrorS(err, "failed to start http server")
		return err
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		klog.Infof("received signal %v, shutting down", sig)
		cancel()
	}()
	return ctx, cancel
}
