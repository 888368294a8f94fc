package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/phrazzld/smart-extract/internal/domain"
)

const usage = `Usage: smartextract [global flags] <command> [flags] [folder]

Commands:
  extract     Create a note from --text (or stdin)
  tag         Add AI tags to every note in a folder
  metadata    Generate frontmatter for every note in a folder
  rewrite     Rewrite every note in a folder
  summarize   Write a summary note for a folder
  serve       Run the local HTTP API

Global flags:
`

// errHelp is returned when the user asked for usage output.
var errHelp = pflag.ErrHelp

// invocation is a parsed command line.
type invocation struct {
	command    string
	configPath string
	yes        bool
	folder     string
	text       string
	source     string

	// global and commandFlags are kept so their values can be bound into viper.
	global       *pflag.FlagSet
	commandFlags *pflag.FlagSet
}

// parseArgs parses global flags, the command name and the command's own flags.
func parseArgs(args []string, stderr io.Writer) (*invocation, error) {
	inv := &invocation{}

	global := pflag.NewFlagSet("smartextract", pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	global.StringVarP(&inv.configPath, "config", "c", "", "path to a YAML config file")
	global.String("log-level", "", "log level: debug, info, warn or error")
	global.BoolVarP(&inv.yes, "yes", "y", false, "skip the confirmation prompt")
	global.Usage = func() {
		fmt.Fprint(stderr, usage)
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return nil, err
	}
	inv.global = global

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return nil, errors.New("no command given")
	}
	inv.command = rest[0]

	fs := pflag.NewFlagSet(inv.command, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	switch inv.command {
	case string(domain.OperationExtract):
		fs.StringVar(&inv.text, "text", "", "selected text; read from stdin when empty")
		fs.StringVar(&inv.source, "source", "", "vault path of the note the text came from")
	case string(domain.OperationTag), string(domain.OperationMetadata),
		string(domain.OperationRewrite), string(domain.OperationSummarize):
		fs.BoolVarP(&inv.yes, "yes", "y", inv.yes, "skip the confirmation prompt")
	case "serve":
		fs.String("addr", "", "listen address, overrides server.addr")
	default:
		global.Usage()
		return nil, fmt.Errorf("unknown command %q", inv.command)
	}
	if err := fs.Parse(rest[1:]); err != nil {
		return nil, err
	}
	inv.commandFlags = fs

	positional := fs.Args()
	switch inv.command {
	case string(domain.OperationExtract), "serve":
		if len(positional) > 0 {
			return nil, fmt.Errorf("%s takes no arguments, got %q", inv.command, positional)
		}
	default:
		if len(positional) != 1 {
			return nil, fmt.Errorf("%s requires exactly one folder argument", inv.command)
		}
		inv.folder = positional[0]
	}

	return inv, nil
}
