package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"txsitter/client"
	"txsitter/config"
	"txsitter/invoke"
	"txsitter/log"
	"txsitter/middleware"
	"txsitter/registry"
)

// app carries the flags and the lazily built dependencies of one command run.
type app struct {
	configPath    string
	envFile       string
	stage         string
	etcdEndpoints []string
	logFormat     string
	logLevel      string
	rate          float64
	burst         int
	timeout       time.Duration
	metricsFile   string

	metrics *prometheus.Registry

	cfg    config.Config
	logger log.Logger

	newInvoker   func(ctx context.Context) (invoke.Invoker, error)
	openRegistry func(endpoints []string) (etcdRegistry, error)
}

type etcdRegistry interface {
	registry.Registry
	Close() error
}

func newApp() *app {
	return &app{
		newInvoker: func(ctx context.Context) (invoke.Invoker, error) {
			return invoke.LoadLambdaInvoker(ctx)
		},
		openRegistry: func(endpoints []string) (etcdRegistry, error) {
			return registry.NewEtcdRegistry(endpoints)
		},
	}
}

// setup loads the environment and config file, then applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = log.Level(a.logLevel)
	}
	if flags.Changed("rate") {
		cfg.RateLimit.Rate = a.rate
	}
	if flags.Changed("burst") {
		cfg.RateLimit.Burst = a.burst
	}
	if flags.Changed("stage") {
		cfg.Etcd.Stage = a.stage
	}
	if flags.Changed("etcd-endpoints") {
		cfg.Etcd.Endpoints = a.etcdEndpoints
	}

	a.cfg = cfg
	a.logger = log.NewZapLogger(cfg.Log)
	return nil
}

// clientConfig returns the function identifiers, from etcd when a stage and
// endpoints are configured.
func (a *app) clientConfig(ctx context.Context) (config.ClientConfig, error) {
	if !a.cfg.Etcd.Enabled() {
		return a.cfg.Client, nil
	}

	reg, err := a.openRegistry(a.cfg.Etcd.Endpoints)
	if err != nil {
		return config.ClientConfig{}, fmt.Errorf("connect etcd: %w", err)
	}
	defer reg.Close()

	cc, err := reg.Lookup(ctx, a.cfg.Etcd.Stage)
	if err != nil {
		return config.ClientConfig{}, err
	}
	log.FromContext(ctx).Debug("resolved client config from etcd", "stage", a.cfg.Etcd.Stage)
	return cc, nil
}

func (a *app) client(ctx context.Context) (*client.Client, error) {
	cc, err := a.clientConfig(ctx)
	if err != nil {
		return nil, err
	}
	invoker, err := a.newInvoker(ctx)
	if err != nil {
		return nil, err
	}

	mws := []middleware.Middleware{
		middleware.TracingMiddleware(),
		middleware.LoggingMiddleware(a.logger),
	}
	if a.metricsFile != "" {
		a.metrics = prometheus.NewRegistry()
		mws = append(mws, middleware.MetricsMiddleware(middleware.NewMetrics(a.metrics)))
	}
	if a.cfg.RateLimit.Enabled() {
		mws = append(mws, middleware.RateLimitMiddleware(a.cfg.RateLimit.Rate, a.cfg.RateLimit.Burst))
	}

	return client.NewClient(invoker, cc,
		client.WithLogger(a.logger),
		client.WithMiddleware(mws...))
}

// writeMetrics dumps the invocation metrics in the node exporter textfile
// format.
func (a *app) writeMetrics() error {
	if a.metricsFile == "" || a.metrics == nil {
		return nil
	}
	return prometheus.WriteToTextfile(a.metricsFile, a.metrics)
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := log.WithContext(cmd.Context(), a.logger)
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
