package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/hcl/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vk/plugdef/internal/app"
	"github.com/vk/plugdef/internal/hcladapter"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code. Its
// message has already been written to the error stream.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

var errUsage = errors.New("usage error")

func usageError(err error) error {
	return errors.Mark(err, errUsage)
}

// Execute runs the command line against args. Reports go to outW; logs,
// diagnostics and errors go to errW. Any failure is returned as an
// *ExitError.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	if args == nil {
		args = []string{}
	}
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	report(errW, err)

	code := ExitFailure
	if errors.Is(err, errUsage) {
		code = ExitUsage
	}
	return &ExitError{Code: code, Message: err.Error()}
}

// report renders HCL diagnostics with their source ranges, and any other
// error with its hints.
func report(w io.Writer, err error) {
	var diags hcl.Diagnostics
	if errors.As(err, &diags) {
		dw := hcl.NewDiagnosticTextWriter(w, nil, 78, false)
		if werr := dw.WriteDiagnostics(diags); werr == nil {
			return
		}
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}
}

// NewRootCommand builds the plugdef command tree. Each call owns its own
// viper instance.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PLUGDEF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "plugdef",
		Short: "Compile declarative plugin definitions and verify them",
		Long: `plugdef compiles HCL plugin definitions into plugins bound to the Go
modules built into the binary, then builds, inspects or tests them.

Definition paths come from the arguments, or from 'paths' in .plugdef.yaml
or PLUGDEF_PATHS. Every flag can also be set as PLUGDEF_<FLAG>.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := readConfigFile(v); err != nil {
				return usageError(err)
			}
			if v.GetBool("no-color") {
				pterm.DisableColor()
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is ./.plugdef.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.Bool("no-color", false, "disable colored output")
	for _, name := range []string{"config", "log-level", "log-format", "no-color"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newCheckCommand(v, outW, errW),
		newInspectCommand(v, outW, errW),
		newTestCommand(v, outW, errW),
	)
	return root
}

func newCheckCommand(v *viper.Viper, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "check [PATH...]",
		Short: "Build every plugin into an in-memory app",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), v, outW, errW, args)
			if err != nil {
				return err
			}
			_, err = a.Check(cmd.Context())
			return err
		},
	}
}

func newInspectCommand(v *viper.Viper, outW, errW io.Writer) *cobra.Command {
	var plugins []string
	cmd := &cobra.Command{
		Use:   "inspect [PATH...]",
		Short: "Print plugin metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), v, outW, errW, args)
			if err != nil {
				return err
			}
			return a.Inspect(cmd.Context(), plugins...)
		},
	}
	cmd.Flags().StringSliceVarP(&plugins, "plugin", "p", nil, "only show the named plugins")
	cmd.Flags().StringP("format", "f", app.FormatYAML, "output format (yaml, json, table)")
	cmd.Flags().String("requires", "", "only show plugins whose version satisfies a semver constraint, e.g. '>= 1.0'")
	for _, name := range []string{"format", "requires"} {
		_ = v.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	return cmd
}

func newTestCommand(v *viper.Viper, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "test [PATH...]",
		Short: "Run the generated conformance checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), v, outW, errW, args)
			if err != nil {
				return err
			}
			_, err = a.RunTests(cmd.Context())
			return err
		},
	}
}

func readConfigFile(v *viper.Viper) error {
	explicit := v.GetString("config")
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName(".plugdef")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// newApp resolves the configuration and builds the application. Arguments
// take precedence over configured paths.
func newApp(ctx context.Context, v *viper.Viper, outW, errW io.Writer, args []string) (*app.App, error) {
	paths := args
	if len(paths) == 0 {
		paths = v.GetStringSlice("paths")
	}

	cfg, err := app.NewConfig(app.Config{
		Paths:     paths,
		LogFormat: strings.ToLower(v.GetString("log-format")),
		LogLevel:  strings.ToLower(v.GetString("log-level")),
		Format:    strings.ToLower(v.GetString("format")),
		Requires:  v.GetString("requires"),
	})
	if err != nil {
		return nil, usageError(err)
	}
	return app.NewApp(ctx, outW, errW, cfg, hcladapter.NewLoader())
}
