package main

import (
	"github.com/spf13/cobra"

	"github.com/voltbyte/bringup/builder"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the build environment",
	Run: func(cmd *cobra.Command, args []string) {
		builder.Environment().Print()
	},
}
