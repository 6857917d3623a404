package main

import (
	"encoding/xml"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voltbyte/bringup/boot"
	"github.com/voltbyte/bringup/cmd/svd2vt/svd"
	"github.com/voltbyte/bringup/targets"
	"github.com/voltbyte/bringup/vector"
)

var (
	svdIn      string
	output     string
	startupOut string
	entry      string
)

func init() {
	flag.StringVar(&svdIn, "in", "", "input SVD file")
	flag.StringVar(&output, "out", "", "output YAML file (default stdout)")
	flag.StringVar(&startupOut, "startup", "", "also write a startup.s with weak IRQ handlers")
	flag.StringVar(&entry, "entry", "main", "entry symbol for the generated startup")
}

type seriesYAML struct {
	Series     string    `yaml:"series"`
	Vendor     string    `yaml:"vendor,omitempty"`
	Cpu        string    `yaml:"cpu"`
	Profile    string    `yaml:"profile"`
	Chips      []string  `yaml:"chips"`
	Interrupts []irqYAML `yaml:"interrupts"`
}

type irqYAML struct {
	Name  string `yaml:"name"`
	Value int    `yaml:"value"`
}

func main() {
	flag.Parse()

	if len(svdIn) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Open the input file
	file, err := os.Open(svdIn)
	if err != nil {
		log.Fatal("file io error: ", err)
	}

	buf, err := io.ReadAll(file)
	if err != nil {
		log.Fatal("io error: ", err)
	}

	if err = file.Close(); err != nil {
		log.Fatal("file io error: ", err)
	}

	// Decode the SVD XML
	var device svd.DeviceElement
	if err = xml.Unmarshal(buf, &device); err != nil {
		log.Fatal("xml decode error: ", err)
	}

	profile := profileForCPU(device.CPU)
	irqs := collectInterrupts(device)

	fmt.Fprintln(os.Stderr, "Generating vector table inputs for the following machine:")
	fmt.Fprintf(os.Stderr, "Device:\t\t%s\n", device.Name)
	fmt.Fprintf(os.Stderr, "CPU:\t\t%s\n", device.CPU.Name)
	fmt.Fprintf(os.Stderr, "Endian:\t\t%s\n", device.CPU.Endian)
	fmt.Fprintf(os.Stderr, "Profile:\t%s\n", profile)
	fmt.Fprintf(os.Stderr, "Interrupts:\t%d (table length %d)\n", len(irqs), vector.Count(irqs))
	fmt.Fprintln(os.Stderr, "Memory sizes are not part of the SVD; fill in flashBase, ramBase, sizeCode and memories by hand.")

	series := seriesYAML{
		Series:  strings.ToLower(firstOf(device.Series, device.Name)),
		Vendor:  device.Vendor,
		Cpu:     cpuName(device.CPU.Name),
		Profile: profile,
		Chips:   []string{strings.ToLower(device.Name)},
	}
	for _, irq := range irqs {
		series.Interrupts = append(series.Interrupts, irqYAML{Name: irq.Name, Value: irq.Value})
	}

	b, err := yaml.Marshal(&series)
	if err != nil {
		log.Fatal("yaml encode error: ", err)
	}
	if len(output) == 0 {
		os.Stdout.Write(b)
	} else if err := os.WriteFile(output, b, 0o644); err != nil {
		log.Fatal("file io error: ", err)
	}

	if len(startupOut) > 0 {
		prof, err := targets.FindByName(profile)
		if err != nil {
			log.Fatal("profile error: ", err)
		}

		// Only the symbol names survive into the emitted assembly, so the
		// addresses here are placeholders.
		table, err := vector.Build(vector.Config{
			Profile:        prof,
			Interrupts:     irqs,
			InitialSP:      0x20001000,
			Entry:          0x100,
			DefaultHandler: 0x100,
		})
		if err != nil {
			log.Fatal("vector table error: ", err)
		}

		if err := os.WriteFile(startupOut, []byte(boot.Startup(table, entry)), 0o644); err != nil {
			log.Fatal("file io error: ", err)
		}
	}
}

// collectInterrupts flattens the per peripheral interrupt lists into one
// list by IRQ number. Peripherals derived from a template repeat their
// parent's entries, so the first occurrence of a number wins.
func collectInterrupts(device svd.DeviceElement) []vector.Interrupt {
	seen := map[int]bool{}
	var irqs []vector.Interrupt
	for _, peripheral := range device.Peripherals.Elements {
		for _, irq := range peripheral.Interrupts {
			value := int(irq.Value)
			if seen[value] {
				continue
			}
			seen[value] = true
			irqs = append(irqs, vector.Interrupt{Name: irq.Name, Value: value})
		}
	}
	sort.Slice(irqs, func(i, j int) bool { return irqs[i].Value < irqs[j].Value })
	return irqs
}

func profileForCPU(cpu svd.CPUElement) string {
	fpu := strings.EqualFold(cpu.FPUPresent, "true") || cpu.FPUPresent == "1"
	switch strings.ToUpper(cpu.Name) {
	case "CM0", "CM0PLUS", "CM0+", "CM1":
		return "thumbv6m-none-eabi"
	case "CM3":
		return "thumbv7m-none-eabi"
	case "CM4", "CM7":
		if fpu {
			return "thumbv7em-none-eabihf"
		}
		return "thumbv7em-none-eabi"
	}
	return "thumbv7m-none-eabi"
}

func cpuName(name string) string {
	switch strings.ToUpper(name) {
	case "CM0":
		return "cortex-m0"
	case "CM0PLUS", "CM0+":
		return "cortex-m0plus"
	case "CM3":
		return "cortex-m3"
	case "CM4":
		return "cortex-m4"
	case "CM7":
		return "cortex-m7"
	}
	return strings.ToLower(name)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return ""
}
