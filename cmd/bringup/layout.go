package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	layoutFlags artifactFlags

	layoutCmd = &cobra.Command{
		Use:   "layout [manifest]",
		Short: "Print the resolved memory layout",
		Long:  "Resolve the program manifest against the device memory map and print every placement and boundary symbol",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := layoutFlags.build(args)
			if err != nil {
				return err
			}
			fmt.Print(a.Report)
			return nil
		},
	}
)

func init() {
	layoutFlags.register(layoutCmd)
}
