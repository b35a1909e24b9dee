// Package cli implements the typegraph command: it inspects the demo
// bookstore schema and resolves entity representations against it.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/graph-gophers/typegraph"
	"github.com/graph-gophers/typegraph/config"
	"github.com/graph-gophers/typegraph/example/bookstore"
	"github.com/graph-gophers/typegraph/log"
)

// version is set at build time via ldflags.
var version = "dev"

type rootConfig struct {
	ConfigFile string
	LogLevel   string
	Format     string
}

// app is the state shared by the subcommands once the root command has
// loaded the configuration.
type app struct {
	cfg    *config.Config
	format Format
	logger zerolog.Logger
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", errorMessage(err))
		fmt.Fprintln(root.ErrOrStderr(), err)
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	rc := rootConfig{}
	a := &app{}
	cmd := &cobra.Command{
		Use:           "typegraph",
		Short:         "Inspect a type graph and resolve federation entities",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(rc.ConfigFile)
			if err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("failed to load configuration").
					WithCause(err)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = rc.LogLevel
				if err := cfg.Validate(); err != nil {
					return errbuilder.New().
						WithCode(errbuilder.CodeInvalidArgument).
						WithMsg("invalid log level").
						WithCause(err)
				}
			}
			format, err := ParseFormat(rc.Format)
			if err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("invalid output format").
					WithCause(err)
			}
			a.cfg = cfg
			a.format = format
			a.logger = setupLogging(cmd, cfg.LogLevel)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&rc.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "info", "Log level")
	cmd.PersistentFlags().StringVarP(&rc.Format, "format", "f", defaultFormat(), "Output format: json, text, pretty (default: pretty if interactive, text otherwise)")

	cmd.AddCommand(newTypesCommand(a))
	cmd.AddCommand(newDescribeCommand(a))
	cmd.AddCommand(newEntitiesCommand(a))
	return cmd
}

func defaultFormat() string {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return string(FormatPretty)
	}
	return string(FormatText)
}

// setupLogging writes human readable logs to the command's error stream.
func setupLogging(cmd *cobra.Command, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		Level(lvl).
		With().Timestamp().Logger()
}

// schema builds the demo schema with the loaded configuration.
func (a *app) schema() (*typegraph.Schema, error) {
	s, err := bookstore.NewSchema(bookstore.NewStore(),
		typegraph.Config(a.cfg),
		typegraph.Logger(log.NewZerologLogger(a.logger)),
	)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to build the schema").
			WithCause(err)
	}
	return s, nil
}

func exitCodeForError(err error) int {
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument:
		return 2
	case errbuilder.CodeNotFound:
		return 3
	case errbuilder.CodeInternal:
		return 4
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
