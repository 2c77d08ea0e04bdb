package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/tkingovr/pipefilter/api"
	"github.com/tkingovr/pipefilter/internal/groups"
	pfsync "github.com/tkingovr/pipefilter/internal/sync"
)

var watchServer string

var watchCmd = &cobra.Command{
	Use:   "watch [node-id]",
	Short: "Follow a running node as an observer",
	Long: `Attach to the sync stream of a node served by "pipefilter serve", mirror
its mode and cursor locally and print the mirrored state after every update.`,
	Example: `  pipefilter watch -c node.yaml
  pipefilter watch furnace-feed --server http://10.0.0.5:8080`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchServer, "server", "", "configuration server base URL (defaults to the listen address)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id := cfg.NodeID
	if len(args) == 1 {
		id = args[0]
	}
	base := watchServer
	if base == "" {
		base = "http://" + cfg.Listen
	}
	base = strings.TrimRight(base, "/")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	snap, err := fetchSnapshot(ctx, base, id)
	if err != nil {
		return err
	}
	resolver, err := cfg.Resolver()
	if err != nil {
		return fmt.Errorf("creating group resolver: %w", err)
	}
	criteria, err := groups.Criteria(ctx, resolver, snap.Slots)
	if err != nil {
		return fmt.Errorf("resolving slots: %w", err)
	}
	mirror := pfsync.NewMirror(len(criteria), logger)
	for i, c := range criteria {
		if err := mirror.SetSlot(i, c); err != nil {
			return err
		}
	}

	wsURL, err := syncURL(base, id)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", wsURL, err)
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	logger.Info("watching node", "node", id, "server", base)
	enc := json.NewEncoder(os.Stdout)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading sync stream: %w", err)
		}
		if err := mirror.Apply(payload); err != nil {
			logger.Warn("bad sync payload", "node", id, "error", err)
			continue
		}
		state := mirror.State()
		active := ""
		if state.CursorValid {
			active = mirror.Criteria()[state.CursorIndex].String()
		}
		if err := enc.Encode(map[string]any{
			"node":         id,
			"mode":         state.Mode,
			"cursor_index": state.CursorIndex,
			"cursor_valid": state.CursorValid,
			"active_slot":  active,
		}); err != nil {
			return err
		}
	}
}

func fetchSnapshot(ctx context.Context, base, id string) (*api.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/v1/nodes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching node %s: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching node %s: %s", id, resp.Status)
	}
	var snap api.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding node %s: %w", id, err)
	}
	return &snap, nil
}

func syncURL(base, id string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", base, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/nodes/" + id + "/sync"
	return u.String(), nil
}
