// Command etls is a command line client, server and benchmark
// for the asynchronous TLS socket engine.
package main

//
// Main
//

import (
	"context"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/onedata/etls/internal/config"
	"github.com/onedata/etls/internal/eventloop"
	"github.com/onedata/etls/internal/logx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions contains the options shared by all the subcommands.
type globalOptions struct {
	configPath string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:           "etls",
		Short:         "Asynchronous TLS sockets capturing the peer certificate chain",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "path of the YAML configuration file")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(connectSubcommand(g))
	root.AddCommand(serveSubcommand(g))
	root.AddCommand(benchSubcommand(g))
	return root
}

// loadConfig reads the configuration file, if any, and configures logging.
func (g *globalOptions) loadConfig() (*config.Config, error) {
	cfg := config.New()
	if g.configPath != "" {
		var err error
		if cfg, err = config.ReadConfig(g.configPath); err != nil {
			return nil, errors.Wrapf(err, "reading %s", g.configPath)
		}
	}
	level := cfg.LogLevel()
	if g.verbose {
		level = log.DebugLevel
	}
	log.Log = &log.Logger{Level: level, Handler: logx.NewHandlerWithDefaultSettings()}
	return cfg, nil
}

// startLoop creates the process-wide event loop and returns the
// function stopping it.
func startLoop(cfg *config.Config) (*eventloop.Loop, func()) {
	loop := eventloop.Init(log.Log, cfg.EventLoopOptions()...)
	return loop, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := eventloop.Shutdown(ctx); err != nil {
			log.Warnf("etls: stopping the event loop: %s", err.Error())
		}
	}
}
