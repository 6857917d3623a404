package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voltbyte/bringup/builder"
)

var (
	simFlags artifactFlags

	simCmd = &cobra.Command{
		Use:   "sim [manifest]",
		Short: "Run the reset sequence on a host model of the device",
		Long:  "Load the built image into a host model of the device memory, perform the reset sequence and report the machine state at handoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := simFlags.build(args)
			if err != nil {
				return err
			}

			state, err := builder.Simulate(a)
			if err != nil {
				return err
			}

			fmt.Printf("sp      %#010x\n", state.SP)
			fmt.Printf("pc      %#010x\n", state.PC)
			fmt.Printf("copied  %d bytes into [%#x, %#x)\n", state.Copied, a.Layout.Symbols.DataStart, a.Layout.Symbols.DataEnd)
			fmt.Printf("zeroed  %d bytes in [%#x, %#x)\n", state.Zeroed, a.Layout.Symbols.BssStart, a.Layout.Symbols.BssEnd)

			if state.SP != a.Layout.Symbols.StackTop {
				return fmt.Errorf("initial stack pointer %#x does not match __stack %#x", state.SP, a.Layout.Symbols.StackTop)
			}
			fmt.Println("ok: handoff state matches the layout")
			return nil
		},
	}
)

func init() {
	simFlags.register(simCmd)
}
