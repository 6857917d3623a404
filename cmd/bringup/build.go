package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voltbyte/bringup/builder"
)

var (
	buildOpts = struct {
		output      string
		device      string
		profile     string
		entry       string
		stackSize   int
		linker      string
		startup     string
		allowBroken bool
	}{}

	buildCmd = &cobra.Command{
		Use:   "build [manifests]",
		Short: "Build boot artifacts for a device",
		Long:  "Build the memory layout, linker script, vector table, startup code and flashable images for one or more program manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(buildOpts.device) == 0 {
				println("no device specified.")
				println("Example:")
				println("  bringup build --device=atsamd21g16a program.yaml")
				return cmd.Help()
			}

			manifests := args
			if len(manifests) == 0 {
				manifests = []string{"program.yaml"}
			}

			err := builder.BuildAll(context.Background(), manifests, builder.Options{
				Output:            buildOpts.output,
				Device:            buildOpts.device,
				Profile:           buildOpts.profile,
				Entry:             buildOpts.entry,
				StackSize:         buildOpts.stackSize,
				Linker:            buildOpts.linker,
				Startup:           buildOpts.startup,
				AllowBrokenLinker: buildOpts.allowBroken,
				Environment:       builder.Environment(),
			})
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}
			return nil
		},
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildOpts.output, "output", "o", "build", "output directory")
	buildCmd.Flags().StringVarP(&buildOpts.device, "device", "d", "", "target device chip name")
	buildCmd.Flags().StringVar(&buildOpts.profile, "profile", "", "override the device target profile")
	buildCmd.Flags().StringVar(&buildOpts.entry, "entry", "", "override the program entry symbol")
	buildCmd.Flags().IntVarP(&buildOpts.stackSize, "stack-size", "s", 0, "override the program stack size in bytes")
	buildCmd.Flags().StringVar(&buildOpts.linker, "linker", "", "linker to prefer (lld or bfd)")
	buildCmd.Flags().StringVar(&buildOpts.startup, "startup", "custom", "startup code provider (custom or toolchain)")
	buildCmd.Flags().BoolVar(&buildOpts.allowBroken, "allow-broken-linker", false, "build even with a linker known to emit bad veneers")
}
