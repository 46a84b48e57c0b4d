package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/planche/internal/config"
	"github.com/arcanaland/planche/internal/pipeline"
)

var (
	configPath string
	logLevel   string
	friends    bool
	dryRun     bool
)

// RootCmd renders the pending cards when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "planche [card_template]",
	Short: "Render game cards into printable HTML planches",
	Long: `Planche reads the card descriptions, matches every card with its numbered photo
and renders the cards that were not printed yet into index<N>.html pages of 16 cards.
Already printed cards are remembered in a ledger so that each run only adds new pages.

The card template defaults to the variant's card_template setting (card-v2.svg, or
card-friend.svg with --friends) and is looked up in the working directory, then in the
configured template directory.

Examples:
  planche
  planche card-v3.svg
  planche --friends
  planche --dry-run`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		cardTemplate, err := p.GetTemplatePath(cardTemplateName(p, args))
		if err != nil {
			return err
		}

		stats, err := pipeline.Run(p, pipeline.Options{CardTemplate: cardTemplate, DryRun: dryRun}, log)
		if err != nil {
			return err
		}

		printSummary(cmd.OutOrStdout(), p, stats)
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file (default $XDG_CONFIG_HOME/planche/config.toml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log", "", "Log level: none, normal or debug (overrides the configuration)")
	RootCmd.PersistentFlags().BoolVarP(&friends, "friends", "f", false, "Use the friends variant (photos only, fixed colors)")
	RootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Render in memory without writing pages or the ledger")

	RootCmd.AddCommand(validateCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// cardTemplateName returns the card template given on the command line, or the variant's default
func cardTemplateName(p *config.Pipeline, args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return p.CardTemplate
}

func variantName() string {
	if friends {
		return config.VariantFriends
	}
	return config.VariantDefault
}

// setup loads the configuration, selects the variant and prepares the logger
func setup() (*config.Config, *config.Pipeline, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, nil, fmt.Errorf("invalid --log value: %w", err)
		}
	}

	p, err := cfg.Variant(variantName())
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := cfg.Logging.Prepare()
	if err != nil {
		return nil, nil, nil, err
	}
	log = log.With(zap.String("variant", variantName()))
	return cfg, p, log, nil
}
