// Package cmd wires the engine's command-line interface.
package cmd

import (
	"bufio"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/dontreeza/sangpragay-strapi/internal/cmd/commands/migrate"
	"github.com/dontreeza/sangpragay-strapi/internal/cmd/commands/validate"
	verscmd "github.com/dontreeza/sangpragay-strapi/internal/cmd/commands/version"
	"github.com/dontreeza/sangpragay-strapi/internal/version"
)

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	cliName := args[0]

	log := hclog.New(&hclog.LoggerOptions{
		Name: cliName,
	})

	if len(args) == 2 &&
		(args[1] == "-version" ||
			args[1] == "-v") {
		args = []string{cliName, "version"}
	}

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	c := &cli.CLI{
		Name:    cliName,
		Args:    args[1:],
		Version: version.Version,
		Commands: map[string]cli.CommandFactory{
			"migrate": func() (cli.Command, error) {
				return &migrate.Command{UI: ui, Log: log.Named("migrate")}, nil
			},
			"validate": func() (cli.Command, error) {
				return &validate.Command{UI: ui, Log: log.Named("validate")}, nil
			},
			"version": func() (cli.Command, error) {
				return &verscmd.Command{UI: ui}, nil
			},
		},
	}

	exitCode, err := c.Run()
	if err != nil {
		log.Error("error running command", "error", err)
		return 1
	}

	return exitCode
}
