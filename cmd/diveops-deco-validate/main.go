package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/diveops/deco-validate/internal/archive"
	"github.com/diveops/deco-validate/internal/constants"
	"github.com/diveops/deco-validate/internal/log"
	"github.com/diveops/deco-validate/internal/validator"
	"github.com/diveops/deco-validate/pkg/config"
	"github.com/diveops/deco-validate/pkg/responseformat"
)

// errVersionShown stops a run after -version has been handled
var errVersionShown = errors.New("version shown")

type options struct {
	cfgFile     string
	format      string
	archivePath string
	debug       bool
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func realMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stdout, stderr)
	if errors.Is(err, errVersionShown) {
		return validator.ExitOK
	}
	if err != nil {
		return validator.ExitStartup
	}

	if err := log.Init(opts.debug); err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return validator.ExitStartup
	}
	defer log.Sync()

	if err := run(context.Background(), opts, stdin, stdout); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", constants.ToolName, err)
		return validator.ExitCode(err)
	}
	return validator.ExitOK
}

func parseFlags(args []string, stdout, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet(constants.ToolName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.cfgFile, "config", "", "Path to YAML configuration file (optional; built-in defaults when empty)")
	fs.StringVar(&opts.format, "format", "", "Output format: 'json' or 'msgpack' (overrides output.format)")
	fs.StringVar(&opts.archivePath, "archive", "", "Path to SQLite run archive (overrides archive.path)")
	fs.BoolVar(&opts.debug, "debug", false, "Turn on debugging output")
	showVersion := fs.Bool("version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if *showVersion {
		fmt.Fprintln(stdout, constants.Version)
		return opts, errVersionShown
	}
	return opts, nil
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer) error {
	cfg, err := loadConfig(opts.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.archivePath != "" {
		cfg.Archive.Path = opts.archivePath
	}

	formatter, err := responseformat.NewFormatter(cfg.Output.Format)
	if err != nil {
		return err
	}

	raw, err := validator.ReadInput(stdin)
	if err != nil {
		return err
	}

	pipeline := validator.New(cfg, log.GetSugaredLogger())
	out, err := pipeline.Run(raw)
	if err != nil {
		return err
	}

	encoded, err := formatter.Encode(out)
	if err != nil {
		return validator.NewError(validator.KindSerialize, fmt.Errorf("failed to encode result: %w", err))
	}

	if cfg.Archive.Path != "" {
		if err := archiveRun(ctx, cfg.Archive.Path, out); err != nil {
			return validator.NewError(validator.KindArchive, err)
		}
	}

	if _, err := stdout.Write(encoded); err != nil {
		return validator.NewError(validator.KindSerialize, fmt.Errorf("failed to write result: %w", err))
	}
	return nil
}

func loadConfig(cfgFile string) (*config.ConfigData, error) {
	var provider config.ConfigProvider = config.DefaultProvider{}
	if cfgFile != "" {
		filename, _ := filepath.Abs(cfgFile)
		provider = config.NewYAMLProvider(filename)
	}
	return provider.LoadConfig()
}

func archiveRun(ctx context.Context, path string, out *validator.Output) error {
	doc, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode archived result: %w", err)
	}

	store, err := archive.Open(ctx, path, log.GetSugaredLogger())
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Record(ctx, archive.Run{
		ToolVersion:  out.ToolVersion,
		InputHash:    out.InputHash,
		GFLow:        out.GFLow,
		GFHigh:       out.GFHigh,
		CeilingM:     out.CeilingM,
		TTSMin:       out.TTSMin,
		NDLMin:       out.NDLMin,
		DecoRequired: out.DecoRequired,
		Output:       doc,
	})
	return err
}
