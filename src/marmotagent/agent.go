package marmotagent

import (
	"time"

	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/marmotagent/tools/tool_createdir"
	"github.com/marmotcli/marmot/src/marmotagent/tools/tool_deletefile"
	"github.com/marmotcli/marmot/src/marmotagent/tools/tool_editfile"
	"github.com/marmotcli/marmot/src/marmotagent/tools/tool_listdir"
	"github.com/marmotcli/marmot/src/marmotagent/tools/tool_readfile"
	"github.com/marmotcli/marmot/src/marmotagent/tools/tool_runcommand"
	"github.com/marmotcli/marmot/src/marmotagent/tools/tool_webfetch"
	"github.com/marmotcli/marmot/src/marmotagent/tools/tool_writefile"
	"github.com/spf13/afero"
)

// Options configures the built-in tool set.
type Options struct {
	// Fs is the filesystem the file tools operate on.
	Fs afero.Fs

	// WorkingDir confines the filesystem tools; empty disables the sandbox.
	WorkingDir string

	// CommandTimeout bounds shell command execution.
	CommandTimeout time.Duration
}

// BuildRegistry assembles the default tool registry.
func BuildRegistry(opts Options) *agent.Registry {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	registry := agent.NewRegistry()
	registry.Register(tool_readfile.New(fs, opts.WorkingDir))
	registry.Register(tool_writefile.New(fs, opts.WorkingDir))
	registry.Register(tool_editfile.New(fs, opts.WorkingDir))
	registry.Register(tool_deletefile.New(fs, opts.WorkingDir))
	registry.Register(tool_createdir.New(fs, opts.WorkingDir))
	registry.Register(tool_listdir.New(fs, opts.WorkingDir))
	registry.Register(tool_runcommand.New(opts.WorkingDir, opts.CommandTimeout))
	registry.Register(tool_webfetch.New(0))
	return registry
}
