package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/actionref/internal/app"
	"github.com/specialistvlad/actionref/internal/config"
	"github.com/specialistvlad/actionref/internal/fsutil"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Commands.
const (
	CmdValidate     = "validate"
	CmdGraph        = "graph"
	CmdResolve      = "resolve"
	CmdSchemas      = "schemas"
	CmdDocsGenerate = "docs generate"
	CmdDocsCheck    = "docs check"
	CmdDocsLint     = "docs lint"
)

// Invocation is a parsed command line.
type Invocation struct {
	Command string
	Config  *app.Config

	// Template is the -template of the resolve command.
	Template string
	// DocsDir is the directory of the docs commands, empty for the
	// configured one.
	DocsDir string
}

const usage = `
actionref - schema registry, config validator and reference docs for build/deploy/test actions.

Usage:
  actionref <command> [options] [PATH]

Commands:
  validate [PROJECT_DIR]        Load and validate every action of the project.
  graph [PROJECT_DIR]           Print the actions in dependency order.
  resolve [PROJECT_DIR]         Resolve action outputs; with -template, evaluate a template string.
  schemas                       List the registered action types.
  docs generate [DIR]           Write the reference pages of every action type.
  docs check [DIR]              Fail if the reference pages are out of date.
  docs lint [DIR]               Check the reference pages for consistency.

Run 'actionref <command> -h' for the options of a command.
`

// Parse processes command-line arguments. It returns the parsed invocation,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	return parse(args, output, nil)
}

// parse is Parse with an explicit environment; nil means the process one.
func parse(args []string, output io.Writer, environ []string) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")

	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(output, usage)
		return nil, true, nil
	}

	command, rest := args[0], args[1:]
	if command == "docs" {
		if len(rest) == 0 || strings.HasPrefix(rest[0], "-") {
			return nil, false, &ExitError{Code: 2, Message: "docs requires a subcommand: generate, check or lint"}
		}
		command, rest = "docs "+rest[0], rest[1:]
	}

	switch command {
	case CmdValidate, CmdGraph, CmdResolve, CmdSchemas, CmdDocsGenerate, CmdDocsCheck, CmdDocsLint:
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q; run 'actionref -h' for usage", command)}
	}

	flagSet := flag.NewFlagSet("actionref "+command, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprintf(output, "\nUsage:\n  actionref %s [options] %s\n\nOptions:\n", command, positionalName(command))
		flagSet.PrintDefaults()
	}

	defaults := config.Defaults()
	flagSet.String(config.KeyLogLevel, defaults[config.KeyLogLevel].(string), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.String(config.KeyLogFormat, defaults[config.KeyLogFormat].(string), "Log output format. Options: 'text' or 'json'.")
	flagSet.String(config.KeySchemasPath, "", "Path to a directory with additional action type manifests (.hcl).")
	flagSet.Int(config.KeyWorkers, defaults[config.KeyWorkers].(int), "Number of concurrent workers for the docs commands.")
	flagSet.Bool(config.KeyColor, false, "Color the output.")
	configFlag := flagSet.String("config", "", "Path to a settings file. Defaults to actionref.yaml in the project root.")

	var templateFlag *string
	switch command {
	case CmdResolve:
		templateFlag = flagSet.String("template", "", "A template string to evaluate, e.g. '${actions.build.api.version}'.")
		flagSet.String(config.KeyEnvironment, "", "The environment to resolve for. Defaults to the project's default environment.")
	case CmdValidate, CmdGraph:
		flagSet.String(config.KeyEnvironment, "", "The environment to validate for.")
	}
	projectFlag := ""
	if strings.HasPrefix(command, "docs ") {
		flagSet.StringVar(&projectFlag, "project", ".", "The project directory the settings are read from.")
	}

	if err := flagSet.Parse(rest); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("too many arguments: %s", strings.Join(flagSet.Args(), " "))}
	}
	slog.Debug("Arguments parsed successfully.", "command", command)

	inv := &Invocation{Command: command}
	if templateFlag != nil {
		inv.Template = *templateFlag
	}

	projectDir := "."
	switch {
	case strings.HasPrefix(command, "docs "):
		projectDir = projectFlag
		inv.DocsDir = flagSet.Arg(0)
	case flagSet.NArg() == 1:
		projectDir = flagSet.Arg(0)
	}

	// Settings live in the project root, which may be above projectDir.
	settingsDir := projectDir
	if root, err := fsutil.FindProjectRoot(projectDir); err == nil {
		settingsDir = root
	}

	flags := make(map[string]any)
	flagSet.Visit(func(f *flag.Flag) {
		if g, ok := f.Value.(flag.Getter); ok && f.Name != "config" && f.Name != "template" && f.Name != "project" {
			flags[f.Name] = g.Get()
		}
	})

	settings, err := config.Load(config.Options{
		ProjectDir: settingsDir,
		File:       *configFlag,
		Flags:      flags,
		Environ:    environ,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Settings resolved.", "file", settings.File)

	cfg, err := app.NewConfig(app.Config{
		ProjectDir:  settingsDir,
		SchemasPath: settings.SchemasPath,
		DocsDir:     settings.DocsDir,
		Environment: settings.Environment,
		LogFormat:   strings.ToLower(settings.LogFormat),
		LogLevel:    strings.ToLower(settings.LogLevel),
		WorkerCount: settings.Workers,
		Color:       settings.Color,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	inv.Config = cfg

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return inv, false, nil
}

func positionalName(command string) string {
	switch command {
	case CmdSchemas:
		return ""
	case CmdDocsGenerate, CmdDocsCheck, CmdDocsLint:
		return "[DIR]"
	default:
		return "[PROJECT_DIR]"
	}
}

// Run executes the invocation's command on a.
func (inv *Invocation) Run(ctx context.Context, a *app.App) error {
	switch inv.Command {
	case CmdValidate:
		return a.Validate(ctx)
	case CmdGraph:
		return a.Graph(ctx)
	case CmdResolve:
		return a.Resolve(ctx, inv.Template)
	case CmdSchemas:
		return a.Schemas(ctx)
	case CmdDocsGenerate:
		return a.DocsGenerate(ctx, inv.DocsDir)
	case CmdDocsCheck:
		return a.DocsCheck(ctx, inv.DocsDir)
	case CmdDocsLint:
		return a.DocsLint(ctx, inv.DocsDir)
	default:
		return &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", inv.Command)}
	}
}
