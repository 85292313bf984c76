// Package main provides the entry point for EVPN Assistant.
// EVPN Assistant is a system tray indicator for the ExpressVPN Linux client
// that shows the connection state and connects to locations from a menu.
//
// Features:
//   - Tray icon reflecting the live connection state
//   - Location menus built from a JSON catalogue
//   - Periodic status polling with a configurable interval
//   - Desktop notifications on connect and disconnect
//   - Command-line and terminal dashboard modes for scripting
//
// Usage:
//
//	evpn-assistant [options]
//
// Environment:
//
//	The application requires the ExpressVPN client to be installed and
//	activated.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/yllada/evpn-assistant/cli"
	"github.com/yllada/evpn-assistant/common"
	"github.com/yllada/evpn-assistant/config"
	"github.com/yllada/evpn-assistant/ui"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	// General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")
	configPath  = flag.String("config", "", "Path to the settings file")

	// CLI flags
	listLocations = flag.Bool("list", false, "List the known locations")
	connectTo     = flag.String("connect", "", "Connect to a location by code or name")
	disconnectVPN = flag.Bool("disconnect", false, "Disconnect from the VPN")
	showStatus    = flag.Bool("status", false, "Show current connection status")
	runTUI        = flag.Bool("tui", false, "Open the terminal dashboard")
)

func main() {
	flag.Parse()

	// Handle help flag
	if *showHelp {
		cli.PrintHelp(os.Stdout)
		os.Exit(0)
	}

	// Handle version flag
	if *showVersion {
		fmt.Printf("%s v%s\n", common.AppName, appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	connectSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "connect" {
			connectSet = true
		}
	})
	cliMode := *listLocations || connectSet || *disconnectVPN || *showStatus

	// Terminal modes keep log lines out of their own output.
	var console io.Writer = os.Stdout
	switch {
	case *runTUI:
		console = io.Discard
	case cliMode:
		console = os.Stderr
	}

	logLevel := common.LevelInfo
	if *verbose {
		logLevel = common.LevelDebug
	}

	if err := common.InitLogger(common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		MaxFileSize: 5 * 1024 * 1024, // 5MB
		MaxBackups:  5,
		Console:     console,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	path := *configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		path = p
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals (SIGINT, SIGTERM)
	setupSignalHandler(cancel)

	app := ui.NewApplication(ctx, common.GetLogger(), ui.Options{
		ConfigPath: path,
		Version:    appVersion,
		Verbose:    *verbose,
	})

	if cliMode {
		code := runCLI(ctx, app, connectSet)
		common.CloseLogger()
		os.Exit(code)
	}

	if *runTUI {
		if err := app.RunDashboard(); err != nil && !errors.Is(err, context.Canceled) {
			common.LogError("Dashboard failed: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	exitCode := app.RunTray()
	if exitCode != 0 {
		common.LogWarn("Application exited with code %d", exitCode)
	}
	os.Exit(exitCode)
}

// runCLI handles command-line interface operations and returns the exit
// code.
func runCLI(ctx context.Context, app *ui.Application, connectSet bool) int {
	cliApp := cli.New(app.Orchestrator(), app.Locations(), os.Stdout)

	var cliErr error

	switch {
	case *listLocations:
		cliErr = cliApp.ListLocations()
	case connectSet:
		cliErr = cliApp.Connect(ctx, *connectTo)
	case *disconnectVPN:
		cliErr = cliApp.Disconnect(ctx)
	case *showStatus:
		cliErr = cliApp.Status(ctx)
	}

	if cliErr != nil {
		common.LogError("CLI command failed: %v", cliErr)
		fmt.Fprintf(os.Stderr, "Error: %v\n", cliErr)
		return 1
	}
	return 0
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
// When a signal is received, it cancels the context to allow cleanup.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()
}
