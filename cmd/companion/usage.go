// FILE: companion/cmd/companion/usage.go
package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/openxr-toolkit/companion/internal/settings"
	"github.com/openxr-toolkit/companion/internal/store"
)

const usageHeader = `Usage:
  companion [--option value ...] [app <name>] dump
  companion [--option value ...] [app <name>] (-<setting> <value>)...
  companion global [--option value ...] (dump | (-<setting> <value>)...)
  companion layer [--option value ...] (status | enable | disable)
  companion reset [--option value ...] <app>
  companion mapping [--option value ...] (init | check | push) <file>
  companion mapping [--option value ...] set <file> (<name>=<value>)...
  companion version

Without "app <name>", the application currently running with the layer is used.
A value starting with "+" is added to the current value (e.g. +1, +-2.5).
`

// writeUsage prints the full usage text. Output errors are ignored.
func writeUsage(w io.Writer) {
	fmt.Fprint(w, usageHeader)

	fmt.Fprintln(w, "\nApplication settings:")
	settings.ApplicationSettings.WriteUsage(w)

	fmt.Fprintln(w, "\nGlobal settings:")
	settings.GlobalSettings.WriteUsage(w)

	fmt.Fprintln(w, "\nOptions (also XRTK_<PATH> environment variables or a companion.toml file):")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, line := range [][2]string{
		{"--config <path>", "configuration file (toml, yaml or json)"},
		{"--store.backend <name>", strings.Join(store.Backends, "|")},
		{"--store.path <path>", "file or sqlite store location"},
		{"--store.root <key>", "registry store key"},
		{"--store.hive <hive>", strings.Join(store.Hives, "|") + " hive of application settings"},
		{"--store.global_hive <hive>", strings.Join(store.Hives, "|") + " hive of global settings"},
		{"--log.level <level>", "trace|debug|info|warn|error (default warn)"},
		{"--log.format <format>", "text|json"},
		{"--log.file <path>", "write diagnostics to a file instead of stderr"},
		{"--layer.manifest <path>", "layer manifest to register"},
		{"--layer.implicit_dir <path>", "implicit layer directory (non-Windows)"},
		{"--mapping.address <host:port>", "UDP listener of a running layer for mapping push"},
		{"--mapping.timeout <duration>", "mapping push deadline (e.g. 2s)"},
	} {
		fmt.Fprintf(tw, "  %s\t%s\n", line[0], line[1])
	}
	tw.Flush()
}
