package commands

import (
	"strings"

	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// CommandLogger returns a logger scoped under the mdc.commands namespace. The
// module name is stamped on every entry so handler executions can be traced
// back to the command group that produced them.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	return logging.WithFields(
		logging.ModuleLogger(provider, "mdc.commands."+name),
		map[string]any{
			"component":      "command",
			"command_module": name,
		},
	)
}
