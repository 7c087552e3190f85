// Package container wires msgscheduler services using go.uber.org/dig.
package container

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	"github.com/crystaldolphin/msgscheduler/internal/api"
	"github.com/crystaldolphin/msgscheduler/internal/channels"
	"github.com/crystaldolphin/msgscheduler/internal/config"
	"github.com/crystaldolphin/msgscheduler/internal/heartbeat"
	"github.com/crystaldolphin/msgscheduler/internal/logx"
	"github.com/crystaldolphin/msgscheduler/internal/schedule"
)

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg      *config.Config
	log      logx.Logger
	manager  *channels.Manager
	timer    *schedule.CronTimer
	registry *schedule.Registry
	server   *api.Server
	beat     *heartbeat.Service
}

func (c *Container) Config() *config.Config        { return c.cfg }
func (c *Container) Logger() logx.Logger           { return c.log }
func (c *Container) Channels() *channels.Manager   { return c.manager }
func (c *Container) Timer() *schedule.CronTimer    { return c.timer }
func (c *Container) Registry() *schedule.Registry  { return c.registry }
func (c *Container) Server() *api.Server           { return c.server }
func (c *Container) Heartbeat() *heartbeat.Service { return c.beat }

// New builds and wires all services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	providers := []any{
		func() *config.Config { return cfg },
		newLogger,
		newMetricsRegistry,
		newScheduleMetrics,
		newChannelManager,
		newCronTimer,
		newRegistry,
		newServer,
		newHeartbeat,
	}
	for _, p := range providers {
		if err := d.Provide(p); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		log logx.Logger,
		manager *channels.Manager,
		timer *schedule.CronTimer,
		registry *schedule.Registry,
		server *api.Server,
		beat *heartbeat.Service,
	) {
		result = &Container{
			cfg:      cfg,
			log:      log,
			manager:  manager,
			timer:    timer,
			registry: registry,
			server:   server,
			beat:     beat,
		}
	})
	return result, err
}

func newLogger(cfg *config.Config) logx.Logger {
	if cfg.Log.JSON {
		return logx.New(os.Stdout, cfg.Log.Level)
	}
	return logx.NewConsole(cfg.Log.Level)
}

func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newScheduleMetrics(reg *prometheus.Registry) *schedule.Metrics {
	return schedule.NewMetrics(reg)
}

func newChannelManager(cfg *config.Config, log logx.Logger) *channels.Manager {
	return channels.NewManager(cfg, log)
}

func newCronTimer(cfg *config.Config, log logx.Logger) (*schedule.CronTimer, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return schedule.NewCronTimer(log, loc), nil
}

func newRegistry(
	cfg *config.Config,
	log logx.Logger,
	manager *channels.Manager,
	timer *schedule.CronTimer,
	metrics *schedule.Metrics,
) (*schedule.Registry, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return schedule.NewRegistry(manager, timer,
		schedule.WithLogger(log),
		schedule.WithLocation(loc),
		schedule.WithMetrics(metrics),
	), nil
}

func newServer(
	cfg *config.Config,
	log logx.Logger,
	registry *schedule.Registry,
	manager *channels.Manager,
	reg *prometheus.Registry,
) *api.Server {
	if !log.Enabled(logx.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewServer(cfg.Server, registry, manager, reg, reg, log)
}

func newHeartbeat(cfg *config.Config, log logx.Logger, manager *channels.Manager, registry *schedule.Registry) *heartbeat.Service {
	probe := func() heartbeat.Status {
		return heartbeat.Status{
			Sender:      manager.SenderChannel(),
			SenderReady: manager.Ready(),
			Pending:     registry.Len(),
		}
	}
	return heartbeat.NewService(probe, cfg.Sender.HeartbeatDuration(), log)
}
