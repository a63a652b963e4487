package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	APIKey   string `env:"MARMOT_API_KEY" help:"API key for the model endpoint"`
	BaseURL  string `help:"Custom API base URL"`
	Model    string `short:"m" help:"Model to use"`
	Config   string `short:"c" help:"Path to config file"`
	LogLevel string `default:"warn" help:"Log level (debug, info, warn, error)"`

	Prompt PromptCmd `cmd:"" help:"Execute a single prompt through the tool loop"`
	Chat   ChatCmd   `cmd:"" help:"Start an interactive chat session"`
	Tools  ToolsCmd  `cmd:"" help:"List the available tools"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("marmot"),
		kong.Description("CLI assistant with an agentic tool loop"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
