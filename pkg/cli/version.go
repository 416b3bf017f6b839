package cli

import (
	"flag"
	"fmt"
	"runtime/debug"
)

// newVersionCommand creates a new version command
func newVersionCommand() *Command {
	fs := flag.NewFlagSet("version", flag.ExitOnError)

	return &Command{
		Name:        "version",
		Description: "Print the build version",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}

			fmt.Printf("axle %s\n", buildVersion())
			return nil
		},
	}
}

// buildVersion reads the module version stamped by the Go toolchain.
func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
