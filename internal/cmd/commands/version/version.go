// Package version implements the version command.
package version

import (
	"github.com/mitchellh/cli"

	"github.com/dontreeza/sangpragay-strapi/internal/version"
)

type Command struct {
	UI cli.Ui
}

func (c *Command) Synopsis() string {
	return "Print the engine version"
}

func (c *Command) Help() string {
	return "Usage: docengd version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
