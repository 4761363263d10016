// Command m2mctl is a thin CLI harness for manual smoke-testing the engine
// packages, playing the role the teacher's examples/* demo mains play for
// go4vl: probe a board's decode/encode profile support, and exercise the
// in-memory resource broker end to end without needing real V4L2 hardware
// on the acquire/release path.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/hwcodec/mcil/codecclient"
	"github.com/hwcodec/mcil/device"
	"github.com/hwcodec/mcil/resource"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "probe-decode":
		runProbe(os.Args[2:], device.KindDecoder, device.GetSupportedDecodeProfiles)
	case "probe-encode":
		runProbe(os.Args[2:], device.KindEncoder, device.GetSupportedEncodeProfiles)
	case "resources":
		runResources(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "m2mctl: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: m2mctl <command> [flags]")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  probe-decode   list decode profiles the board advertises")
	fmt.Fprintln(os.Stderr, "  probe-encode   list encode profiles the board advertises")
	fmt.Fprintln(os.Stderr, "  resources      exercise the in-memory resource broker")
}

func probeTableFlag(fs *pflag.FlagSet) func() (device.ProbeTable, error) {
	path := fs.StringP("probe-table", "p", "", "optional YAML probe table override (defaults to the built-in table)")
	return func() (device.ProbeTable, error) {
		if *path == "" {
			return device.DefaultProbeTable(), nil
		}
		return device.LoadProbeTable(*path)
	}
}

func runProbe(args []string, kind device.Kind, enumerate func(device.ProbeTable, ...device.Option) ([]device.SupportedProfile, error)) {
	fs := pflag.NewFlagSet("probe", pflag.ExitOnError)
	loadTable := probeTableFlag(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	table, err := loadTable()
	if err != nil {
		color.Red("m2mctl: load probe table: %v", err)
		os.Exit(1)
	}

	color.Cyan("probing %s device for supported profiles...", kind)
	profiles, err := enumerate(table)
	if err != nil {
		color.Red("m2mctl: %v", err)
		os.Exit(1)
	}
	if len(profiles) == 0 {
		color.Yellow("no supported profiles reported")
		return
	}
	for _, p := range profiles {
		fmt.Printf("  profile=%-2d  %4dx%-4d .. %4dx%-4d  encrypted_only=%v\n",
			p.ProfileID, p.MinWidth, p.MinHeight, p.MaxWidth, p.MaxHeight, p.EncryptedOnly)
	}
}

func runResources(args []string) {
	fs := pflag.NewFlagSet("resources", pflag.ExitOnError)
	ports := fs.IntP("ports", "n", 4, "ports per (device type, codec) class")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	broker := resource.New(resource.WithPortsPerClass(*ports))

	color.Cyan("acquiring %d decoder ports for H.264 @ 1920x1080...", *ports)
	tokens := make([]codecclient.ResourceToken, 0, *ports)
	portIdx := make([]int, 0, *ports)
	for i := 0; i < *ports; i++ {
		token, port, err := broker.Acquire(codecclient.DeviceTypeDecoder, codecclient.CodecH264, 1920, 1080, 30)
		if err != nil {
			color.Red("acquire %d: %v", i, err)
			os.Exit(1)
		}
		fmt.Printf("  acquired token=%s port=%d\n", token, port)
		tokens = append(tokens, token)
		portIdx = append(portIdx, port)
	}

	if _, _, err := broker.Acquire(codecclient.DeviceTypeDecoder, codecclient.CodecH264, 1920, 1080, 30); err != nil {
		color.Green("pool correctly exhausted: %v", err)
	} else {
		color.Red("expected the pool to be exhausted after %d acquisitions", *ports)
	}

	color.Cyan("releasing all acquired ports...")
	for i, token := range tokens {
		if err := broker.Release(token, portIdx[i]); err != nil {
			color.Red("release %s: %v", token, err)
			os.Exit(1)
		}
	}
	fmt.Printf("in-use after release: %d\n", broker.InUseCount())
}
