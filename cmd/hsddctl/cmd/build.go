package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsdd-project/hsdd/manager"
	"github.com/hsdd-project/hsdd/pkg/utils"
	"github.com/hsdd-project/hsdd/sdd"
)

var buildFlags scenarioFlags

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a demo tuple space and report its size",
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	registerScenarioFlags(buildCmd.Flags(), &buildFlags)
	buildCmd.Flags().Bool("dot", false, "Print a Graphviz dot rendering of the built relation")
}

func runBuild(cmd *cobra.Command, args []string) error {
	log := GetLogger()
	timer := utils.NewTimer("build", utils.WithLogger(log))

	return withManager(func(m *manager.Manager) error {
		pt := timer.Start("order")
		o, err := buildOrder(buildFlags.vars)
		if err != nil {
			return err
		}
		pt.Stop()

		pt = timer.Start("dd")
		rel, err := buildTupleSpace(m.SDDBuilder(), o, buildFlags)
		if err != nil {
			return err
		}
		pt.Stop()

		timer.PrintSummary()

		count := m.Count(rel)
		fmt.Printf("variables: %d, modulus: %d, tuples requested: %d\n", buildFlags.vars, buildFlags.modulus, buildFlags.tuples)
		fmt.Printf("relation path count: %s\n", count.String())
		fmt.Printf("nodes reachable: %d\n", len(sdd.AllNodes(rel)))

		showDot, _ := cmd.Flags().GetBool("dot")
		if showDot {
			if err := sdd.DumpDot(cmd.OutOrStdout(), rel); err != nil {
				return err
			}
		}
		return nil
	})
}
