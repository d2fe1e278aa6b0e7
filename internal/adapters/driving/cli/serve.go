package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/documentviewer/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/documentviewer/internal/adapters/driving/mcp"
	"github.com/custodia-labs/documentviewer/internal/adapters/driving/watch"
	"github.com/custodia-labs/documentviewer/internal/logger"
)

var (
	serveAddr  string
	serveInbox string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion workers and HTTP API",
	Long: `Runs the background conversion workers, the HTTP API with the MCP endpoint
mounted at /mcp and, when an inbox directory is configured, the inbox watcher
until interrupted.

At startup every stored document without current artifacts is queued, which
picks up uploads made while no server was running.

On interrupt the HTTP API stops accepting requests and running conversions
finish before the process exits.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides http.addr)")
	serveCmd.Flags().StringVar(&serveInbox, "inbox", "", "inbox directory to watch (overrides watch.dir)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if documentService == nil || dispatcher == nil || workerPool == nil {
		return errors.New("services not configured")
	}

	addr := firstNonEmpty(serveAddr, httpAddr, ":8080")
	inbox := firstNonEmpty(serveInbox, inboxDir)

	mcpServer, err := mcp.NewServer(&mcp.Ports{Documents: documentService, Dispatcher: dispatcher})
	if err != nil {
		return err
	}
	router := httpapi.NewRouter(documentService, dispatcher, httpapi.Config{
		Mounts: map[string]http.Handler{"/mcp": mcpServer.Handler()},
	})

	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// Running jobs must not see the shutdown signal; Stop lets them finish.
	g.Go(func() error {
		return workerPool.Start(context.WithoutCancel(gctx))
	})
	g.Go(func() error {
		<-gctx.Done()
		return workerPool.Stop()
	})

	g.Go(func() error {
		queued, err := dispatcher.EnqueueStale(gctx)
		if err != nil && gctx.Err() == nil {
			logger.Warn("serve: stale sweep: %v", err)
		}
		if queued > 0 {
			logger.Info("serve: queued %d stale document(s)", queued)
		}
		return nil
	})

	g.Go(func() error {
		cmd.Printf("HTTP API listening on %s (MCP at /mcp)\n", addr)
		return httpapi.Serve(gctx, addr, router)
	})

	if inbox != "" {
		g.Go(func() error {
			return watch.New(inbox, documentService).Run(gctx)
		})
	}

	err = g.Wait()
	logger.Info("serve: stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
