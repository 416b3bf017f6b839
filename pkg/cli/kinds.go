package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/platinummonkey/axle/pkg/validation"
)

// newKindsCommand creates a new kinds command
func newKindsCommand() *Command {
	fs := flag.NewFlagSet("kinds", flag.ExitOnError)

	jsonOut := fs.Bool("json", false, "Emit the taxonomy as JSON")

	return &Command{
		Name:        "kinds",
		Description: "List the violation kinds the checker can raise",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}

			return runKinds(*jsonOut)
		},
	}
}

func runKinds(jsonOut bool) error {
	kinds := validation.Kinds()

	if jsonOut {
		type kindInfo struct {
			Kind        validation.Kind `json:"kind"`
			Description string          `json:"description"`
		}
		infos := make([]kindInfo, 0, len(kinds))
		for _, kind := range kinds {
			infos = append(infos, kindInfo{Kind: kind, Description: kind.Description()})
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(infos)
	}

	fmt.Printf("Violation kinds (%d):\n\n", len(kinds))
	for _, kind := range kinds {
		fmt.Printf("  %-22s %s\n", kind, kind.Description())
	}
	return nil
}
