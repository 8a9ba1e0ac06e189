package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/redactor/internal/server"
	"github.com/matzehuels/redactor/pkg/cache"
	"github.com/matzehuels/redactor/pkg/pipeline"
	"github.com/matzehuels/redactor/pkg/session"
)

// serveCommand creates the serve command, which runs the web shell.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web shell",
		Long: `Run the web shell over HTTP.

Sessions are kept in memory unless --redis is given, in which case sessions
and cached artifacts live in Redis and several instances can share them.
The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("redis") {
				redisURL = c.Config.Server.Redis
			}
			return c.runServe(cmd.Context(), addr, redisURL)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "redis:// URL for sessions and the artifact cache")

	return cmd
}

// runServe wires the backends and serves until ctx is done.
func (c *CLI) runServe(ctx context.Context, addr, redisURL string) error {
	logger := loggerFromContext(ctx)
	cfg := c.Config.Server

	var (
		store    session.Store
		artifact cache.Cache
		err      error
	)
	if redisURL != "" {
		if store, err = session.DialRedis(ctx, redisURL, session.DefaultRedisPrefix); err != nil {
			return fmt.Errorf("session store: %w", err)
		}
		if artifact, err = cache.DialRedis(ctx, redisURL); err != nil {
			store.Close()
			return fmt.Errorf("artifact cache: %w", err)
		}
	} else {
		store = session.NewMemoryStore()
		if artifact, err = c.newCache(false); err != nil {
			return fmt.Errorf("artifact cache: %w", err)
		}
	}
	defer store.Close()

	runner := pipeline.NewRunner(artifact, c.newKeyer(), logger)
	defer runner.Close()

	srv, err := server.New(runner, store, logger, server.Options{
		Addr:            addr,
		SessionTTL:      cfg.SessionTTL.Duration,
		MaxBody:         cfg.MaxBody,
		ShutdownTimeout: cfg.Shutdown.Duration,
		Delay:           c.Config.Render.Delay.Duration,
		Render:          c.baseOptions(),
	})
	if err != nil {
		return err
	}

	backend := "memory"
	if redisURL != "" {
		backend = "redis"
	}
	printKeyValue("address", StyleLink.Render(displayURL(addr)))
	printKeyValue("sessions", backend)
	printKeyValue("source", displayURL(addr)+"/source/app.html")
	if redisURL == "" {
		printWarning("sessions live in this process and are lost on restart")
	}

	return srv.Run(ctx)
}

// displayURL turns a listen address into a browsable URL.
func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
