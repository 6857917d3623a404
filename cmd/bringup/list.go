package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voltbyte/bringup/devices"
	"github.com/voltbyte/bringup/targets"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the devices known to the build system",
	Run: func(cmd *cobra.Command, args []string) {
		for _, info := range devices.All() {
			for _, chip := range info.Chips {
				device, err := devices.FindByChip(chip)
				if err != nil {
					continue
				}
				fmt.Printf("%-16s %-12s %-14s %4d KiB flash %4d KiB ram\n",
					device.Name, info.Series, info.Cpu, device.Memory.Flash, device.Memory.Ram)
			}
		}
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the supported target profiles",
	Run: func(cmd *cobra.Command, args []string) {
		for _, profile := range targets.All() {
			features := profile.FormatFeatureString()
			if len(features) == 0 {
				features = "-"
			}
			fmt.Printf("%-24s %-14s %-10s %-5s %-20s %s\n",
				profile.Name, profile.Cpu, profile.Architecture, profile.Float, features,
				strings.Join(profile.Tags, ","))
		}
	},
}
