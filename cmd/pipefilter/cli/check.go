package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tkingovr/pipefilter/internal/filter"
	"github.com/tkingovr/pipefilter/internal/groups"
)

var checkItem string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Dry-run the configured filter against one item",
	Long: `Check whether the configured slots and mode would let an item through,
without touching persisted state or the extraction log. In round-robin mode
the answer is for the slot the cursor starts on.`,
	Example: `  pipefilter check -c node.yaml --item oak_planks
  pipefilter check -c node.yaml --item '#plank'`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkItem, "item", "", "item variant (or #group) to check")
	_ = checkCmd.MarkFlagRequired("item")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	resolver, err := cfg.Resolver()
	if err != nil {
		return fmt.Errorf("creating group resolver: %w", err)
	}
	criteria, err := groups.Criteria(ctx, resolver, cfg.Slots)
	if err != nil {
		return fmt.Errorf("resolving slots: %w", err)
	}
	item, err := groups.Criterion(ctx, resolver, checkItem)
	if err != nil {
		return err
	}

	b := filter.New(filter.WithCapacity(cfg.Capacity))
	for i, c := range criteria {
		if err := b.SetSlot(i, c); err != nil {
			return err
		}
	}
	b.SetMode(cfg.Mode)

	output := struct {
		Item     string   `json:"item"`
		Groups   []string `json:"groups,omitempty"`
		Fluid    string   `json:"fluid,omitempty"`
		Mode     string   `json:"mode"`
		Accepted bool     `json:"accepted"`
		Cursor   int      `json:"cursor"`
	}{
		Item:     checkItem,
		Groups:   item.Memberships(),
		Fluid:    item.Fluid,
		Mode:     b.Mode().String(),
		Accepted: b.ItemPredicate()(item),
		Cursor:   b.Cursor().Index,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
