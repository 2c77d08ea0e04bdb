package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tkingovr/pipefilter/internal/store"
)

var stateList bool

var stateCmd = &cobra.Command{
	Use:   "state [node-id]",
	Short: "Print the persisted record of a node",
	Example: `  pipefilter state -c node.yaml
  pipefilter state furnace-feed --data-dir /var/lib/pipefilter
  pipefilter state --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runState,
}

func init() {
	stateCmd.Flags().BoolVar(&stateList, "list", false, "list the ids of every persisted node")
	rootCmd.AddCommand(stateCmd)
}

func runState(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	records, err := store.OpenSQLite(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}
	defer records.Close()

	if stateList {
		ids, err := records.List(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	id := cfg.NodeID
	if len(args) == 1 {
		id = args[0]
	}
	rec, err := records.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("node %s: %w", id, err)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(map[string]any{"node": id, "record": rec})
}
