package ui

import (
	"context"
	"image/color"
	"sync"

	"github.com/yllada/evpn-assistant/common"
	"github.com/yllada/evpn-assistant/config"
	"github.com/yllada/evpn-assistant/vpn"
)

// Application wires the VPN client, the poller and the front ends
// together and keeps them in step with the settings file.
type Application struct {
	ctx        context.Context
	configPath string
	version    string
	verbose    bool
	logger     *common.AppLogger

	runner       *vpn.ProcessRunner
	controller   *vpn.Controller
	orchestrator *vpn.Orchestrator
	poller       *vpn.Poller
	locations    *vpn.LocationMenu
	watcher      *config.Watcher

	mu         sync.Mutex
	config     *config.Config
	lastState  vpn.ConnectionState
	lastKnown  vpn.ConnectionState
	listeners  []vpn.StateListener
	tray       *TrayIndicator
	notifier   common.Notifier
	settingsMu sync.Mutex
	quitOnce   sync.Once
	cancel     context.CancelFunc
}

// Options configures NewApplication.
type Options struct {
	ConfigPath string
	Version    string
	// Verbose forces DEBUG logging regardless of settings.
	Verbose bool
}

// NewApplication creates the application from the settings file at
// opts.ConfigPath, falling back to defaults when it cannot be read.
func NewApplication(ctx context.Context, logger *common.AppLogger, opts Options) *Application {
	cfg, err := config.LoadFrom(opts.ConfigPath)
	if err != nil {
		logger.Warn("Using default settings: %v", err)
		cfg = config.DefaultConfig()
	}

	ctx, cancel := context.WithCancel(ctx)

	a := &Application{
		ctx:        ctx,
		configPath: opts.ConfigPath,
		version:    opts.Version,
		verbose:    opts.Verbose,
		logger:     logger,
		config:     cfg,
		lastState:  vpn.StateUnknown,
		lastKnown:  vpn.StateUnknown,
		cancel:     cancel,
	}

	a.applyLogLevel(cfg)
	a.locations = a.loadLocations(cfg)

	a.runner = vpn.NewProcessRunner(cfg.BinaryPath, logger.WithComponent("runner"))
	a.controller = vpn.NewController(a.runner, logger.WithComponent("controller"))
	a.orchestrator = vpn.NewOrchestrator(a.controller, a, logger.WithComponent("actions"))
	a.poller = vpn.NewPoller(ctx, a.controller, cfg.Interval(), logger.WithComponent("poller"))
	a.poller.SetListener(a)

	return a
}

// Orchestrator returns the menu actions.
func (a *Application) Orchestrator() *vpn.Orchestrator {
	return a.orchestrator
}

// Locations returns the location catalogue in use.
func (a *Application) Locations() *vpn.LocationMenu {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.locations
}

// Config returns a copy of the current settings.
func (a *Application) Config() config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.config
}

// Subscribe adds a receiver for every published state.
func (a *Application) Subscribe(l vpn.StateListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, l)
}

// OnStateChanged fans a state out to the tray, the notifier and any
// subscribers.
func (a *Application) OnStateChanged(state vpn.ConnectionState) {
	a.mu.Lock()
	prev := a.lastState
	a.lastState = state
	// Unknown readings do not count as a transition for notifications.
	known := a.lastKnown
	if state != vpn.StateUnknown {
		a.lastKnown = state
	}
	tray := a.tray
	notifier := a.notifier
	notify := a.config.ShowNotifications
	listeners := append([]vpn.StateListener(nil), a.listeners...)
	a.mu.Unlock()

	if prev != state {
		a.logger.Info("VPN status changed: %s -> %s", prev, state)
	}

	if tray != nil {
		tray.OnStateChanged(state)
	}
	if notify && notifier != nil {
		if n, ok := TransitionNotification(known, state); ok {
			if err := notifier.NotifyWithIcon(n.Title, n.Message, n.Icon); err != nil {
				a.logger.Debug("Notification not shown: %v", err)
			}
		}
	}
	for _, l := range listeners {
		l.OnStateChanged(state)
	}
}

// RunTray shows the tray indicator and blocks until the user quits or ctx
// is cancelled.
func (a *Application) RunTray() int {
	a.logger.Info("Starting %s v%s", common.AppName, a.version)

	notifier := NewDesktopNotifier(a.logger.WithComponent("notify"))
	defer notifier.Close()

	cfg := a.Config()
	tray := NewTrayIndicator(a.ctx, a.orchestrator, a.Locations(), tintOf(cfg), a.logger.WithComponent("tray"), a.Quit)

	a.mu.Lock()
	a.tray = tray
	a.notifier = notifier
	a.mu.Unlock()

	a.startBackground()
	defer a.stopBackground()
	defer a.Quit()

	go func() {
		<-a.ctx.Done()
		tray.Quit()
	}()

	tray.Run()
	return 0
}

// RunDashboard runs the terminal dashboard until the user quits.
func (a *Application) RunDashboard() error {
	a.startBackground()
	defer a.stopBackground()

	cfg := a.Config()
	return RunDashboard(a.ctx, a.orchestrator, a.Locations(), cfg.MenuLabelColour, a.Subscribe)
}

// Quit stops polling and ends Run.
func (a *Application) Quit() {
	a.quitOnce.Do(func() {
		a.logger.Info("Shutting down")
		a.cancel()
	})
}

func (a *Application) startBackground() {
	if a.configPath != "" {
		w, err := config.NewWatcher(a.configPath, a.ReloadSettings, a.logger.WithComponent("settings"))
		if err != nil {
			a.logger.Warn("Settings will not be reloaded automatically: %v", err)
		} else {
			a.watcher = w
		}
	}

	cfg := a.Config()
	if cfg.PollingEnabled {
		a.poller.Start()
	}
}

func (a *Application) stopBackground() {
	a.poller.Stop()
	if a.watcher != nil {
		a.watcher.Stop()
	}
}

// ReloadSettings re-reads the settings file: polling stops, the new
// settings are applied, and polling restarts if it is enabled.
func (a *Application) ReloadSettings() {
	a.settingsMu.Lock()
	defer a.settingsMu.Unlock()

	wasPolling := a.poller.IsActive()
	a.poller.Stop()

	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		a.logger.Warn("Keeping previous settings: %v", err)
		a.mu.Lock()
		cfg = a.config
		a.mu.Unlock()
	} else {
		a.applySettings(cfg)
	}

	if cfg.PollingEnabled {
		a.poller.Start()
	} else if wasPolling {
		a.logger.Info("Status polling disabled")
	}
}

func (a *Application) applySettings(cfg *config.Config) {
	a.mu.Lock()
	old := a.config
	a.config = cfg
	tray := a.tray
	a.mu.Unlock()

	a.applyLogLevel(cfg)
	a.poller.SetInterval(cfg.Interval())

	if tray != nil {
		tray.SetTint(tintOf(*cfg))
	}

	if running := a.runner.Binary(); cfg.BinaryPath != running {
		a.logger.Warn("binary_path changed to %s but %s is still in use; restart to use it", cfg.BinaryPath, running)
	}
	if cfg.LocationsFile != old.LocationsFile {
		locations := a.loadLocations(cfg)
		a.mu.Lock()
		a.locations = locations
		a.mu.Unlock()
		a.logger.Info("Location list reloaded; menus pick it up on restart")
	}

	a.logger.Debug("Settings applied: interval %v, polling %v, logging %v",
		cfg.Interval(), cfg.PollingEnabled, cfg.LoggingEnabled)
}

func (a *Application) applyLogLevel(cfg *config.Config) {
	if a.verbose {
		a.logger.SetLevel(common.LevelDebug)
		return
	}
	a.logger.SetLevel(cfg.LogLevel())
}

func (a *Application) loadLocations(cfg *config.Config) *vpn.LocationMenu {
	menu, err := vpn.LoadLocations(cfg.LocationsFile)
	if err != nil {
		a.logger.Warn("Using built-in locations: %v", err)
		return vpn.DefaultLocations()
	}
	return menu
}

func tintOf(cfg config.Config) color.RGBA {
	c, err := common.ParseRGB(cfg.GroupIconColour)
	if err != nil {
		c, _ = common.ParseRGB("rgb(233,84,32)")
	}
	return c
}
