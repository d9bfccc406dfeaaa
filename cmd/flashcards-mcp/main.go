package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ironsheep/flashcards-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "flashcards-mcp",
		Short: "Find flashcards on scanned study pages",
		Long: color.New(color.FgHiMagenta).Sprintf("flashcards-mcp ") +
			color.New(color.FgBlue).Sprintf("(%s)", Version) +
			"\n\nGroups the words recognized on a page into flashcard regions.\n" +
			"Without a subcommand it serves the MCP protocol over stdin/stdout.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/flashcards-mcp/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Read environment variables from this file when it exists")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCmd(flags), newGroupCmd(flags), newVersionCmd())
	return rootCmd
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP protocol over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
}

func runServe(ctx context.Context, flags *globalFlags) error {
	a, err := newApp(flags)
	if err != nil {
		return err
	}
	defer a.Close()

	recognizer, err := a.Recognizer(ctx)
	if err != nil {
		return err
	}
	cat, err := a.Catalog(ctx)
	if err != nil {
		return err
	}

	a.log.Info("starting MCP server",
		"version", Version, "build_time", BuildTime, "commit", GitCommit,
		"strategy", a.cfg.Grouping.Strategy, "ocr", a.cfg.OCR.Engine, "catalog", a.cfg.Catalog.Backend)

	srv := server.New(server.Options{
		Engine:     a.engine,
		Recognizer: recognizer,
		Catalog:    cat,
		Cache:      a.cache,
		Logger:     a.log,
		Version:    Version,
	})
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		a.log.Error("server error", "error", err)
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "flashcards-mcp %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}
