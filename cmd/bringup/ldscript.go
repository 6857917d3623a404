package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voltbyte/bringup/layout"
)

var (
	ldscriptFlags artifactFlags
	ldscriptFull  bool

	ldscriptCmd = &cobra.Command{
		Use:   "ldscript [manifest]",
		Short: "Emit the linker script",
		Long:  "Emit the device linker script to stdout. The script includes program.ld; --full prints that part too.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ldscriptFlags.build(args)
			if err != nil {
				return err
			}
			fmt.Print(a.Script)
			if ldscriptFull {
				fmt.Print(layout.ProgramScript())
			}
			return nil
		},
	}
)

func init() {
	ldscriptFlags.register(ldscriptCmd)
	ldscriptCmd.Flags().BoolVar(&ldscriptFull, "full", false, "also print the program.ld section rules")
}
