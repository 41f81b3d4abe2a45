// Package validate implements the validate command: it loads the schema
// directory and reports descriptor problems without touching the database.
package validate

import (
	"flag"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

type Command struct {
	UI  cli.Ui
	Log hclog.Logger

	flagSchemas string
}

func (c *Command) Synopsis() string {
	return "Validate the schema directory"
}

func (c *Command) Help() string {
	return `Usage: docengd validate -schemas=./schemas

  Parses every content-type and component descriptor in the directory
  and reports unresolved references, reserved attribute names, and
  unsupported constraint combinations.
`
}

func (c *Command) flags() *flag.FlagSet {
	f := flag.NewFlagSet("validate", flag.ContinueOnError)
	f.StringVar(&c.flagSchemas, "schemas", "./schemas", "Path to the schema directory")
	return f
}

func (c *Command) Run(args []string) int {
	if err := c.flags().Parse(args); err != nil {
		return 1
	}

	registry, err := schema.LoadDir(c.flagSchemas)
	if err != nil {
		c.UI.Error(fmt.Sprintf("schema validation failed: %v", err))
		return 1
	}

	for _, uid := range registry.UIDs() {
		c.UI.Output(uid)
	}
	c.UI.Output(fmt.Sprintf("%d schemas OK", len(registry.UIDs())))
	return 0
}
