package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mna_valuation/pkg/config"
	"mna_valuation/pkg/core/suite"
)

var (
	casePath string
	seed     int64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every engine the case file supplies inputs for",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadCase(casePath)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("seed") {
			if c.DCF == nil || c.DCF.MonteCarlo == nil {
				return eris.New("run: --seed given but the case has no Monte Carlo block")
			}
			c.DCF.MonteCarlo.Seed = uint64(seed)
		}

		res := suite.Run(zap.L(), *c)

		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return eris.Wrap(err, "run: marshal result")
		}
		fmt.Fprintln(os.Stdout, string(out))

		if len(res.Failures) > 0 {
			return eris.Errorf("run: %d engine(s) failed", len(res.Failures))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&casePath, "case", "", "path to the case file (YAML or JSON)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "override the Monte Carlo seed")
	_ = runCmd.MarkFlagRequired("case")

	rootCmd.AddCommand(runCmd)
}
