// Package app assembles the daemon: config, logging, the notification core,
// the bus adapter and the expiry sweeper, plus hot reload of the tunables
// that support it.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"

	"notifyd/internal/config"
	"notifyd/internal/dbusiface"
	"notifyd/internal/freedesktop"
	"notifyd/internal/observability/pprof"
	"notifyd/internal/relay"
	"notifyd/internal/server"
	"notifyd/internal/surface"
	"notifyd/internal/sweep"
	"notifyd/pkg/logx"
)

type App struct {
	cfgPath string
	cfgm    *config.Manager

	logs *logx.Service
	log  logx.Logger

	icons   *freedesktop.IconResolver
	relay   *relay.Relay
	surf    surface.Surface
	core    *server.Server
	adapter *dbusiface.Adapter
	sweeper *sweep.Service
	prof    *pprof.Service

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfgPath string) (*App, error) {
	bootLog := logx.NewConsole("INFO").With(logx.String("comp", "config"))
	cfgm := config.NewManager(cfgPath, bootLog)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(logSvc.Logger().With(logx.String("comp", "config")))

	defaultTimeout, err := cfg.DefaultTimeout()
	if err != nil {
		return nil, err
	}
	sweepInterval, err := cfg.SweepInterval()
	if err != nil {
		return nil, err
	}

	icons := freedesktop.NewIconResolver(cfg.Icons.Theme)
	rel := relay.New(cfg.RelayBuffer(), logSvc.Logger().With(logx.String("comp", "relay")))
	surf := surface.NewLog(logSvc.Logger().With(logx.String("comp", "surface")))
	core := server.New(logSvc.Logger().With(logx.String("comp", "server")), rel, surf)
	adapter := dbusiface.New(
		logSvc.Logger().With(logx.String("comp", "dbus")),
		core, rel, icons,
		dbusiface.Options{
			DefaultIcon:    cfg.DefaultIcon(),
			DefaultTimeout: defaultTimeout,
		})
	sweeper := sweep.New(logSvc.Logger().With(logx.String("comp", "sweep")), core, sweepInterval)
	prof := pprof.New(pprof.Config{
		Enabled: cfg.Debug.Pprof.Enabled,
		Addr:    cfg.Debug.Pprof.Addr,
	}, logSvc.Logger().With(logx.String("comp", "pprof")))

	return &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		logs:    logSvc,
		log:     log,
		icons:   icons,
		relay:   rel,
		surf:    surf,
		core:    core,
		adapter: adapter,
		sweeper: sweeper,
		prof:    prof,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	runctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	a.core.Start(runctx)
	if err := a.adapter.Start(runctx); err != nil {
		a.core.Stop(context.Background())
		cancel()
		return err
	}
	if err := a.sweeper.Start(); err != nil {
		a.adapter.Stop(context.Background())
		a.core.Stop(context.Background())
		cancel()
		return fmt.Errorf("start sweeper: %w", err)
	}

	if a.prof.Enabled() {
		a.prof.Start()
	}

	sub := a.cfgm.Subscribe(8)
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		_ = a.cfgm.Watch(runctx)
	}()
	go func() {
		defer a.wg.Done()
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-runctx.Done():
				return
			case cfg, ok := <-sub:
				if !ok {
					return
				}
				a.applyConfig(cfg)
			}
		}
	}()

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Warn("sd_notify ready", logx.Err(err))
	} else if sent {
		a.log.Debug("notified systemd: ready")
	}

	a.log.Info("notifyd started", logx.String("config", a.cfgPath))
	return nil
}

// applyConfig pushes a reloaded config into the running components. Only
// hot-swappable tunables are touched; the relay buffer needs a restart.
func (a *App) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	a.icons.SetTheme(cfg.Icons.Theme)

	defaultTimeout, err := cfg.DefaultTimeout()
	if err == nil {
		a.adapter.SetOptions(dbusiface.Options{
			DefaultIcon:    cfg.DefaultIcon(),
			DefaultTimeout: defaultTimeout,
		})
	}
	if interval, err := cfg.SweepInterval(); err == nil {
		if err := a.sweeper.Apply(interval); err != nil {
			a.log.Warn("sweep interval not applied", logx.Err(err))
		}
	}
	a.prof.Reconfigure(context.Background(), pprof.Config{
		Enabled: cfg.Debug.Pprof.Enabled,
		Addr:    cfg.Debug.Pprof.Addr,
	})
	a.log.Info("config applied")
}

// Stop tears the daemon down in dependency order: stop producing events,
// close the relay so the signal emitter drains, then drop off the bus.
func (a *App) Stop(ctx context.Context) error {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	a.prof.Stop(ctx)
	a.sweeper.Stop(ctx)
	a.core.Stop(ctx)
	a.relay.Close()
	a.adapter.Stop(ctx)
	_ = a.surf.Close()

	a.wg.Wait()
	a.log.Info("notifyd stopped")
	_ = a.logs.Close()
	return nil
}
