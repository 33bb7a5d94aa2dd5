// Command fftrim trims and re-encodes a media file with ffmpeg.
//
// It loads configuration (defaults, config file, environment, flags), then
// either runs system diagnostics (--check), prints a file's streams
// ("fftrim probe"), or runs the trim pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/fftrim/internal/check"
	"github.com/backmassage/fftrim/internal/config"
	"github.com/backmassage/fftrim/internal/display"
	"github.com/backmassage/fftrim/internal/logging"
	"github.com/backmassage/fftrim/internal/pipeline"
)

// dotenvPath is loaded from the working directory when present.
const dotenvPath = ".env"

// errReported marks a failure already written through the logger.
var errReported = errors.New("reported")

// usageError is a malformed command line; the usage text is printed with it.
type usageError struct {
	cmd *cobra.Command
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var ue *usageError
	switch {
	case errors.As(err, &ue):
		fmt.Fprintf(stderr, "fftrim: %v\n\n", ue.err)
		fmt.Fprint(stderr, ue.cmd.UsageString())
	case errors.Is(err, errReported):
	default:
		fmt.Fprintf(stderr, "fftrim: %v\n", err)
	}
	return 1
}

func newRootCommand() *cobra.Command {
	flagCfg := config.DefaultConfig()

	root := &cobra.Command{
		Use:   "fftrim [flags] [input]",
		Short: "Trim and re-encode a media file with ffmpeg",
		Long: "fftrim cuts a time range out of a media file, optionally fitting it to a\n" +
			"target size, merging or dropping audio tracks and normalizing loudness.",
		Args:          usageArgs(cobra.MaximumNArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTrim,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{cmd: c, err: err}
	})

	config.BindTrimFlags(root.Flags(), &flagCfg)
	config.BindGlobalFlags(root.PersistentFlags(), &flagCfg)

	root.AddCommand(newProbeCommand())
	return root
}

func newProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <input>",
		Short: "Print a file's duration and streams",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE:  runProbe,
	}
}

// usageArgs turns positional argument errors into usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{cmd: cmd, err: err}
		}
		return nil
	}
}

// setup loads the layered config for cmd. It returns a nil config when
// --version was handled.
func setup(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, st, err := config.Load(cmd.Flags(), dotenvPath)
	if err != nil {
		return nil, err
	}
	if st.ShowVersion {
		fmt.Fprintln(cmd.OutOrStdout(), "fftrim v"+config.Version)
		return nil, nil
	}
	if err := config.ApplyPositional(cfg, args); err != nil {
		return nil, &usageError{cmd: cmd, err: err}
	}
	return cfg, nil
}

// signalContext cancels on SIGINT/SIGTERM so a running encode is stopped
// and its partial output removed.
func signalContext(parent context.Context, log *logging.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping ffmpeg…")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

func runTrim(cmd *cobra.Command, args []string) error {
	// Phase 1: Bootstrap. Errors go to stderr via run until the logger exists.
	cfg, err := setup(cmd, args)
	if err != nil || cfg == nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return &usageError{cmd: cmd, err: err}
	}

	log, err := logging.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	// Phase 2: Logger available; all output goes through log from here on.
	display.PrintBanner(cmd.OutOrStdout())

	ctx, stop := signalContext(cmd.Context(), log)
	defer stop()

	if cfg.CheckOnly {
		if err := check.RunCheck(ctx, cfg, log); err != nil {
			return errReported
		}
		return nil
	}

	if err := check.CheckDeps(cfg); err != nil {
		log.Error("%v", err)
		return errReported
	}

	// Phase 3: Run the trim.
	deps := pipeline.DefaultDeps()
	if cfg.Verbose {
		deps.Echo = cmd.ErrOrStderr()
		deps.Renderer = display.NewLineRenderer(cmd.OutOrStdout())
	}
	if _, err := pipeline.Run(ctx, cfg, log, deps); err != nil {
		log.Error("%v", err)
		return errReported
	}
	return nil
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd, args)
	if err != nil || cfg == nil {
		return err
	}

	log, err := logging.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, stop := signalContext(cmd.Context(), log)
	defer stop()

	if err := pipeline.Inspect(ctx, cfg, log, pipeline.DefaultDeps(), cmd.OutOrStdout()); err != nil {
		log.Error("%v", err)
		return errReported
	}
	return nil
}
