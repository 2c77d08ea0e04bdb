package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkingovr/pipefilter/api"
	"github.com/tkingovr/pipefilter/internal/config"
	"github.com/tkingovr/pipefilter/internal/dashboard"
	"github.com/tkingovr/pipefilter/internal/node"
)

var (
	serveKind   string
	serveAmount int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the node tick loop and the configuration server",
	Long: `Open the configured node, start the configuration server and run one
extraction attempt every tick_interval until interrupted. Observers attach
to /api/v1/nodes/<id>/sync.`,
	Example: `  pipefilter serve -c node.yaml
  PIPEFILTER_LISTEN=:9090 pipefilter serve -c node.yaml --kind fluid`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveKind, "kind", string(api.KindItem), "resource kind: item or fluid")
	serveCmd.Flags().IntVar(&serveAmount, "amount", config.DefaultFluidVolume, "fluid volume per attempt")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	kind := api.Kind(serveKind)
	if kind != api.KindItem && kind != api.KindFluid {
		return fmt.Errorf("--kind must be item or fluid, got %q", serveKind)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			logger.Error("closing node", "error", err)
		}
	}()

	registry := node.NewRegistry()
	if err := registry.Add(rt.node); err != nil {
		return err
	}

	srv := dashboard.NewServer(cfg.Listen, registry, rt.audit, rt.hub, rt.resolver, logger)
	go func() {
		if err := srv.ListenAndServe(ctx); err != nil {
			logger.Error("configuration server error", "error", err)
		}
	}()

	logger.Info("starting tick loop",
		"node", rt.node.ID(),
		"kind", kind,
		"interval", cfg.TickInterval,
		"listen", cfg.Listen,
	)
	return tickLoop(ctx, rt, kind)
}

func tickLoop(ctx context.Context, rt *runtime, kind api.Kind) error {
	ticker := time.NewTicker(rt.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rec, err := rt.node.Extract(ctx, rt.cfg.Container, kind, serveAmount)
			if err != nil {
				logger.Error("extraction failed", "node", rt.node.ID(), "error", err)
				continue
			}
			if rec.CursorBefore != rec.CursorAfter {
				if err := rt.node.Save(ctx); err != nil {
					logger.Error("saving node", "node", rt.node.ID(), "error", err)
				}
			}
		}
	}
}
