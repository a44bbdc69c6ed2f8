package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"portfolio/internal/config"
	"portfolio/internal/logger"
)

// Version is overridden at build time with -ldflags "-X portfolio/cmd.Version=...".
var Version = "1.0.0"

// cli carries state shared by every subcommand.
type cli struct {
	cfgFile string
	envFile string
	cfg     *config.Config
	logger  *zap.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "portfolio",
		Short: "Personal portfolio and blog server",
		Long: `portfolio serves a personal website with a blog. Posts come from
markdown files, the embedded badger store or a headless CMS.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initializeConfig(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newServeCommand(c),
		newDBCommand(c),
		newCacheCommand(c),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) initializeConfig(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load(config.Options{
		File:    c.cfgFile,
		EnvFile: c.envFile,
		Bind: func(v *viper.Viper) error {
			if f := cmd.Flags().Lookup("addr"); f != nil {
				return v.BindPFlag("server.addr", f)
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env, cfg.Log.Level)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = log
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portfolio version %s\n", Version)
		},
	}
}

// confirm asks a yes/no question on the command's streams.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	var response string
	fmt.Fscanln(cmd.InOrStdin(), &response)
	return response == "y" || response == "Y"
}
