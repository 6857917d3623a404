package main

import (
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/spf13/cobra"

	"github.com/voltbyte/bringup/builder"
)

var (
	inspectFlags artifactFlags

	inspectCmd = &cobra.Command{
		Use:   "inspect [manifest]",
		Short: "Interactively explore built artifacts",
		Long:  "Build the program in memory and open a shell over the result: regions, sections, symbols, vectors and flash contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := inspectFlags.build(args)
			if err != nil {
				return err
			}

			shell := ishell.New()
			shell.SetPrompt(a.Program.Name + " > ")
			shell.Println("inspecting", a.Program.Name, "on", a.Device.Name)

			shell.AddCmd(&ishell.Cmd{
				Name: "regions",
				Help: "list memory regions",
				Func: func(c *ishell.Context) {
					for _, region := range a.Layout.Memory {
						c.Printf("%-8s %-4s %#010x..%#010x %d bytes\n",
							region.Name, region.Attr, region.Base, region.End(), region.Length)
					}
				},
			})

			shell.AddCmd(&ishell.Cmd{
				Name: "sections",
				Help: "list placed sections",
				Func: func(c *ishell.Context) {
					for _, placement := range a.Layout.Placements {
						c.Printf("%-12s %-8s %-6s %#010x %#010x %8d\n",
							placement.Section.Name, placement.Section.Kind, placement.Region,
							placement.Addr, placement.LoadAddr, placement.Length())
					}
				},
			})

			shell.AddCmd(&ishell.Cmd{
				Name: "symbols",
				Help: "list boundary symbols",
				Func: func(c *ishell.Context) {
					for _, symbol := range a.Layout.Symbols.List() {
						c.Printf("%-16s %#010x\n", symbol.Name, symbol.Addr)
					}
				},
			})

			shell.AddCmd(&ishell.Cmd{
				Name: "vectors",
				Help: "list vector table entries",
				Func: func(c *ishell.Context) {
					for _, entry := range a.Table.Entries {
						if entry.Reserved {
							c.Printf("%3d %-14s %#010x (reserved)\n", int(entry.Index), entry.Index, entry.Addr)
							continue
						}
						c.Printf("%3d %-14s %#010x %s\n", int(entry.Index), entry.Index, entry.Addr, entry.Name)
					}
				},
			})

			shell.AddCmd(&ishell.Cmd{
				Name: "hexdump",
				Help: "hexdump <addr> [length], flash only",
				Func: func(c *ishell.Context) {
					hexdump(c, a)
				},
			})

			shell.Run()
			return nil
		},
	}
)

func init() {
	inspectFlags.register(inspectCmd)
}

func hexdump(c *ishell.Context, a *builder.Artifacts) {
	if len(c.Args) == 0 {
		c.Println("usage: hexdump <addr> [length]")
		return
	}

	addr, err := strconv.ParseUint(c.Args[0], 0, 64)
	if err != nil {
		c.Err(err)
		return
	}
	length := uint64(64)
	if len(c.Args) > 1 {
		if length, err = strconv.ParseUint(c.Args[1], 0, 64); err != nil {
			c.Err(err)
			return
		}
	}

	base := a.Layout.Symbols.TextStart
	end := base + uint64(len(a.Binary))
	if addr < base || addr >= end {
		c.Printf("%#x is outside the flash image [%#x, %#x)\n", addr, base, end)
		return
	}
	if addr+length > end {
		length = end - addr
	}

	for row := addr &^ 15; row < addr+length; row += 16 {
		lo, hi := row, row+16
		if lo < addr {
			lo = addr
		}
		if hi > addr+length {
			hi = addr + length
		}
		c.Printf("%08x  % x\n", lo, a.Binary[lo-base:hi-base])
	}
}
