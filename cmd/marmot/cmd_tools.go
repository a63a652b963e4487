package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/marmotcli/marmot/src/marmotagent"
)

// ToolsCmd lists the available tools
type ToolsCmd struct {
	Verbose bool `short:"v" help:"Show tool descriptions"`
}

func (t *ToolsCmd) Run(cli *CLI) error {
	registry := marmotagent.BuildRegistry(marmotagent.Options{
		CommandTimeout: 30 * time.Second,
	})

	for _, name := range registry.Names() {
		tool, _ := registry.Get(name)
		schema := tool.Schema()

		if !t.Verbose {
			fmt.Println(name)
			continue
		}

		// First line of the prompt is the short description.
		description, _, _ := strings.Cut(schema.Description, "\n")
		fmt.Printf("%s\n  %s\n", name, description)
		for _, param := range schema.Parameters {
			required := ""
			if param.Required {
				required = " (required)"
			}
			fmt.Printf("    %s%s: %s\n", param.Name, required, param.Description)
		}
	}

	return nil
}
