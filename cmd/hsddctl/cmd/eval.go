package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsdd-project/hsdd/manager"
	"github.com/hsdd-project/hsdd/pkg/utils"
)

var evalFlags scenarioFlags

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Saturate and evaluate a cyclic increment homomorphism over a demo tuple space",
	RunE:  runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	registerScenarioFlags(evalCmd.Flags(), &evalFlags)
}

func runEval(cmd *cobra.Command, args []string) error {
	log := GetLogger()
	timer := utils.NewTimer("eval", utils.WithLogger(log))

	return withManager(func(m *manager.Manager) error {
		pt := timer.Start("order+dd")
		o, err := buildOrder(evalFlags.vars)
		if err != nil {
			return err
		}
		input, err := buildTupleSpace(m.SDDBuilder(), o, evalFlags)
		if err != nil {
			return err
		}
		pt.Stop()

		pt = timer.Start("build-fixpoint")
		naive, err := buildCycleFixpoint(m.HomBuilder(), o, evalFlags)
		if err != nil {
			return err
		}
		pt.Stop()

		pt = timer.Start("rewrite")
		rewritten, err := m.Rewrite(naive, o.Root())
		if err != nil {
			return err
		}
		pt.Stop()

		pt = timer.Start("evaluate-naive")
		naiveOut, err := m.Eval(o.Root(), naive, input)
		if err != nil {
			return err
		}
		pt.Stop()

		pt = timer.Start("evaluate-rewritten")
		rewrittenOut, err := m.Eval(o.Root(), rewritten, input)
		if err != nil {
			return err
		}
		pt.Stop()

		timer.PrintSummary()

		fmt.Printf("input path count:       %s\n", m.Count(input).String())
		fmt.Printf("naive output count:     %s\n", m.Count(naiveOut).String())
		fmt.Printf("rewritten output count: %s\n", m.Count(rewrittenOut).String())
		if naiveOut == rewrittenOut {
			fmt.Println("naive and rewritten evaluation agree (same canonical node)")
		} else {
			fmt.Println("WARNING: naive and rewritten evaluation produced different nodes")
		}
		return nil
	})
}
