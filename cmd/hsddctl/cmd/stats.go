package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsdd-project/hsdd/internal/cache"
	"github.com/hsdd-project/hsdd/internal/unique"
	"github.com/hsdd-project/hsdd/manager"
)

var statsFlags scenarioFlags

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Run the eval scenario and report unique-table and cache diagnostics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	registerScenarioFlags(statsCmd.Flags(), &statsFlags)
}

func runStats(cmd *cobra.Command, args []string) error {
	return withManager(func(m *manager.Manager) error {
		if _, err := runScenarioEval(m, statsFlags); err != nil {
			return err
		}

		s := m.Stats()
		fmt.Println("=== Unique tables ===")
		printTableStats("sdd", s.SDDTable)
		printTableStats("hom", s.HomTable)

		fmt.Println("=== Operation caches ===")
		printCacheStats("sum", s.SumCache)
		printCacheStats("inter", s.InterCache)
		printCacheStats("diff", s.DiffCache)
		printCacheStats("eval", s.EvalCache)
		return nil
	})
}

func printTableStats(name string, s unique.Stats) {
	fmt.Printf("  %-5s size=%-6d buckets=%-6d hits=%-6d misses=%-6d evictions=%d\n",
		name, s.Size, s.Buckets, s.Hits, s.Misses, s.Evictions)
}

func printCacheStats(name string, s cache.Stats) {
	fmt.Printf("  %-5s size=%-6d capacity=%-6d hits=%-6d misses=%-6d evictions=%d\n",
		name, s.Size, s.Capacity, s.Hits, s.Misses, s.Evictions)
}
