package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mipCmd = &cobra.Command{
	Use:   "mip",
	Short: "Exact mixed-integer-programming solve (not implemented)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("mip: exact MIP solving is out of scope for this pipeline; use solve-single-step, solve-three-step or solve-benchmark")
	},
}
