package main

import (
	"context"
	goflag "flag"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/voltbyte/bringup/builder"
)

var rootCmd = &cobra.Command{
	Use:   "bringup",
	Short: "Boot and link artifacts for bare metal Cortex-M programs",
	Long: `bringup turns a device, a target profile and a program manifest into the
pieces a bare metal image needs before main can run: a memory layout, a
linker script with its boundary symbols, a vector table, reset startup
code and flashable images.`,
}

func init() {
	klog.InitFlags(nil)
	rootCmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)

	rootCmd.AddCommand(buildCmd, layoutCmd, ldscriptCmd, simCmd, devicesCmd, targetsCmd, envCmd, inspectCmd)
}

// artifactFlags are shared by the commands that need a full build in memory
// before they can say anything.
type artifactFlags struct {
	device  string
	profile string
}

func (f *artifactFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.device, "device", "d", "", "target device chip name")
	cmd.Flags().StringVar(&f.profile, "profile", "", "override the device target profile")
}

func (f *artifactFlags) build(args []string) (*builder.Artifacts, error) {
	return builder.Build(context.Background(), builder.Options{
		Manifest:    manifestArg(args),
		Device:      f.device,
		Profile:     f.profile,
		Environment: builder.Environment(),
	})
}

func manifestArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "program.yaml"
}
