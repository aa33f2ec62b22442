// Package main wires up the cobra root command, its config/version
// subcommands, and viper flag binding for keepd's server flags
// (host/port/max-clients/log-level/log-format/snapshot-path/
// snapshot-interval/enable-persist).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keepd/keepd/internal/config"
	"github.com/keepd/keepd/internal/logging"
	"github.com/keepd/keepd/internal/server"
	"github.com/keepd/keepd/internal/snapshot"
	"github.com/keepd/keepd/internal/store"
)

var version = "0.1.0" // set during build with -ldflags

var rootCmd = &cobra.Command{
	Use:   "keepd",
	Short: "keepd - an in-memory, multi-datatype key-value store",
	Long: `keepd is a single-node, in-memory key-value store speaking a
tagged length-prefixed wire protocol over TCP.

Supported datatypes: STRING, HASH, LIST, SET.
Per-key TTL expiry, lazily swept.
Snapshot persistence via SAVE/RESTORE.`,
	Version: version,
	RunE:    runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}

	logging.SetLevel(cfg.LogLevel)
	logging.Infof("starting keepd v%s", version)
	logging.Infof("%s", cfg.String())

	engine := store.NewEngine()

	if cfg.EnablePersist {
		if ok, err := snapshot.Restore(engine, cfg.SnapshotPath); err != nil {
			logging.Warnf("restore at startup failed: %v", err)
		} else if ok {
			logging.Infof("restored snapshot from %s", cfg.SnapshotPath)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	listener := server.New(addr, engine, int64(cfg.MaxClients), cfg.SnapshotPath)

	if err := listener.Start(); err != nil {
		return err
	}

	var stopPersist chan struct{}
	if cfg.EnablePersist && cfg.SnapshotInterval > 0 {
		stopPersist = make(chan struct{})
		go periodicSnapshot(engine, cfg.SnapshotPath, cfg.SnapshotInterval, stopPersist)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logging.Infof("shutting down")
	if stopPersist != nil {
		close(stopPersist)
	}
	listener.Stop()
	return nil
}

// periodicSnapshot calls snapshot.Save on a ticker until stop is
// closed.
func periodicSnapshot(engine *store.Engine, path string, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := snapshot.Save(engine, path); err != nil {
				logging.Warnf("periodic snapshot failed: %v", err)
			} else {
				logging.Debugf("periodic snapshot written to %s", path)
			}
		case <-stop:
			return
		}
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		fmt.Println("keepd configuration:")
		fmt.Println(strings.Repeat("=", 31))
		fmt.Printf("Host: %s\n", cfg.Host)
		fmt.Printf("Port: %d\n", cfg.Port)
		fmt.Printf("Max Clients: %d\n", cfg.MaxClients)
		fmt.Printf("Timeout: %v\n", cfg.Timeout)
		fmt.Printf("Log Level: %s\n", cfg.LogLevel)
		fmt.Printf("Log Format: %s\n", cfg.LogFormat)
		fmt.Printf("Snapshot Path: %s\n", cfg.SnapshotPath)
		fmt.Printf("Snapshot Interval: %v\n", cfg.SnapshotInterval)
		fmt.Printf("Persistence Enabled: %t\n", cfg.EnablePersist)
		fmt.Printf("Read Timeout: %v\n", cfg.ReadTimeout)
		fmt.Printf("Write Timeout: %v\n", cfg.WriteTimeout)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("keepd v%s\n", version)
		fmt.Printf("built with Go %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("host", "H", "127.0.0.1", "host to bind to")
	rootCmd.PersistentFlags().IntP("port", "p", 31337, "port to listen on")
	rootCmd.PersistentFlags().Int("max-clients", 1024, "maximum concurrent client connections")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "client idle timeout (stored in the config; not applied to connections)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().Bool("debug", false, "shorthand for --log-level=debug")
	rootCmd.PersistentFlags().String("log-format", "text", "log format name (stored in the config; log output is always plain text)")
	rootCmd.PersistentFlags().String("snapshot-path", "./keepd.snapshot", "snapshot file path used by default SAVE/RESTORE")
	rootCmd.PersistentFlags().Duration("snapshot-interval", 0, "automatic snapshot interval (0 disables)")
	rootCmd.PersistentFlags().Bool("enable-persist", false, "restore a snapshot at startup and save periodically")
	rootCmd.PersistentFlags().Duration("read-timeout", 30*time.Second, "read timeout (stored in the config; not applied to connections)")
	rootCmd.PersistentFlags().Duration("write-timeout", 30*time.Second, "write timeout (stored in the config; not applied to connections)")

	viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("max_clients", rootCmd.PersistentFlags().Lookup("max-clients"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("snapshot_path", rootCmd.PersistentFlags().Lookup("snapshot-path"))
	viper.BindPFlag("snapshot_interval", rootCmd.PersistentFlags().Lookup("snapshot-interval"))
	viper.BindPFlag("enable_persist", rootCmd.PersistentFlags().Lookup("enable-persist"))
	viper.BindPFlag("read_timeout", rootCmd.PersistentFlags().Lookup("read-timeout"))
	viper.BindPFlag("write_timeout", rootCmd.PersistentFlags().Lookup("write-timeout"))

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute is the CLI entry point.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
