// Package migrate implements the migrate command: it creates or upgrades
// the storage tables for every registered content type and component, and
// seeds the default locale.
package migrate

import (
	"context"
	"flag"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/dontreeza/sangpragay-strapi/internal/config"
	"github.com/dontreeza/sangpragay-strapi/internal/locales"
	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

type Command struct {
	UI  cli.Ui
	Log hclog.Logger

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Create or upgrade the storage tables"
}

func (c *Command) Help() string {
	return `Usage: docengd migrate -config=config.hcl

  Loads the schema directory named in the configuration, creates any
  missing tables and columns, and seeds the default locale. Existing
  data is never dropped.
`
}

func (c *Command) flags() *flag.FlagSet {
	f := flag.NewFlagSet("migrate", flag.ContinueOnError)
	f.StringVar(&c.flagConfig, "config", "config.hcl", "Path to the configuration file")
	return f
}

func (c *Command) Run(args []string) int {
	if err := c.flags().Parse(args); err != nil {
		return 1
	}

	if err := c.run(context.Background()); err != nil {
		c.UI.Error(fmt.Sprintf("error running migrations: %v", err))
		return 1
	}
	c.UI.Output("migrations complete")
	return 0
}

func (c *Command) run(ctx context.Context) error {
	cfg, err := config.FromFile(c.flagConfig)
	if err != nil {
		return err
	}

	registry, err := schema.LoadDir(cfg.SchemaDir)
	if err != nil {
		return err
	}
	c.Log.Info("loaded schemas", "dir", cfg.SchemaDir, "count", len(registry.UIDs()))

	db, err := store.Connect(cfg.StoreConfig(), c.Log)
	if err != nil {
		return err
	}

	engine := store.NewEngine(db, registry, c.Log)
	if err := engine.AutoMigrate(ctx); err != nil {
		return err
	}

	localeStore, err := locales.NewStore(db)
	if err != nil {
		return err
	}
	defaultLocale := cfg.DefaultLocale
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return localeStore.EnsureDefault(ctx, defaultLocale, defaultLocale)
}
