// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for chatdesk.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdModels
	CmdConversations
	CmdShow
	CmdDelete
	CmdUpload
	CmdHealth
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
)

var commandNames = map[Command]string{
	CmdTUI:           "tui",
	CmdChat:          "chat",
	CmdAsk:           "ask",
	CmdModels:        "models",
	CmdConversations: "conversations",
	CmdShow:          "show",
	CmdDelete:        "delete",
	CmdUpload:        "upload",
	CmdHealth:        "health",
	CmdExport:        "export",
	CmdConfig:        "config",
	CmdVersion:       "version",
	CmdHelp:          "help",
}

// String returns the command name as typed on the command line.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	URL        string // --url overrides backend.url
	Env        string // --env overrides backend.environment
	ConfigPath string // --config loads a specific file
	Model      string // --model "provider/name"
	JSON       bool
	Verbose    bool
	Quiet      bool

	// Command-specific
	Query          string
	File           string
	ConversationID string
	Subcommand     string
	ConfigKey      string
	ConfigVal      string
	Format         string // export format: markdown or json
	Output         string // export directory, "-" for stdout
	Confirm        bool   // delete without prompting

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `chatdesk - terminal client for a chat backend
Version: %s

Usage:
  chatdesk [flags] [command] [args]

Commands:
  (none), tui                 Start the full-screen interface
  chat                        Line-based chat with history
  ask "question"              Send one message and print the reply
      -f, --file PATH         Attach a .pdf or .txt document
      -c, --conversation ID   Continue an existing conversation
  models                      List available models
  conversations, ls           List conversations
  show ID                     Print a conversation
  delete, rm ID [--confirm]   Delete a conversation
  upload PATH                 Upload a document and print what was extracted
  health                      Check the backend
  export ID                   Save a conversation to a file
      --format md|json        Output format (default md)
      -o, --output DIR|-      Directory to write to, - for stdout
  config [show|path|get KEY|set KEY VALUE]
  version                     Print version information
  help                        Show this help

Global flags:
  --url URL                   Backend URL (default http://localhost:5669)
  --env ENV                   development or production
  --config PATH               Config file (default ~/.chatdesk/config.toml)
  -m, --model P/N             Model as provider/name
  --json                      JSON output
  -v, --verbose               Debug logging
  -q, --quiet                 Minimal output

Chat commands:
  /new /list /open N /model [P/N] /upload PATH /drop /delete N /reload /help /quit
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "chatdesk version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses command-line arguments (without the program name).
func Parse(argv []string) (Command, Args, error) {
	remaining, parsedArgs, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, parsedArgs, err
	}

	// No command starts the TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs, nil
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs, nil

	case "chat":
		return CmdChat, parsedArgs, nil

	case "ask":
		if err := parseAskArgs(&parsedArgs, remaining); err != nil {
			return CmdAsk, parsedArgs, err
		}
		return CmdAsk, parsedArgs, nil

	case "models":
		return CmdModels, parsedArgs, nil

	case "conversations", "ls", "list":
		return CmdConversations, parsedArgs, nil

	case "show":
		err := parseIDArg(&parsedArgs, remaining, "chatdesk show <conversation-id>")
		return CmdShow, parsedArgs, err

	case "delete", "rm":
		var ids []string
		for _, arg := range remaining {
			switch arg {
			case "-y", "--yes", "--confirm":
				parsedArgs.Confirm = true
			default:
				ids = append(ids, arg)
			}
		}
		err := parseIDArg(&parsedArgs, ids, "chatdesk delete <conversation-id> [--confirm]")
		return CmdDelete, parsedArgs, err

	case "upload":
		if len(remaining) == 0 {
			return CmdUpload, parsedArgs, ErrMissingArgument("path", "chatdesk upload ./notes.pdf")
		}
		parsedArgs.File = remaining[0]
		return CmdUpload, parsedArgs, nil

	case "health", "status":
		return CmdHealth, parsedArgs, nil

	case "export":
		err := parseExportArgs(&parsedArgs, remaining)
		return CmdExport, parsedArgs, err

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs, nil

	case "version", "--version":
		return CmdVersion, parsedArgs, nil

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs, nil

	default:
		example := "chatdesk help"
		if suggestion := SuggestCommand(cmd); suggestion != "" {
			example = "chatdesk " + suggestion
		}
		return CmdHelp, parsedArgs, NewValidationErrorWithExample("command", cmd, "unknown command", example)
	}
}

// takeValue returns the value of a flag given as "--flag value" or
// "--flag=value". ok is false when arg is not this flag.
func takeValue(args []string, i *int, names ...string) (value string, ok bool, err error) {
	arg := args[*i]
	for _, name := range names {
		if arg == name {
			if *i+1 >= len(args) {
				return "", true, ErrMissingArgument(name, name+" VALUE")
			}
			*i++
			return args[*i], true, nil
		}
		if strings.HasPrefix(name, "--") && strings.HasPrefix(arg, name+"=") {
			return strings.TrimPrefix(arg, name+"="), true, nil
		}
	}
	return "", false, nil
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// Global flags may appear anywhere on the line.
func parseGlobalFlags(args []string) ([]string, Args, error) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
			continue
		case "-v", "--verbose":
			parsedArgs.Verbose = true
			continue
		case "--json":
			parsedArgs.JSON = true
			continue
		case "--":
			remaining = append(remaining, args[i+1:]...)
			return remaining, parsedArgs, nil
		}

		if v, ok, err := takeValue(args, &i, "--url"); ok {
			if err != nil {
				return nil, parsedArgs, err
			}
			parsedArgs.URL = v
			continue
		}
		if v, ok, err := takeValue(args, &i, "--env"); ok {
			if err != nil {
				return nil, parsedArgs, err
			}
			parsedArgs.Env = v
			continue
		}
		if v, ok, err := takeValue(args, &i, "--config"); ok {
			if err != nil {
				return nil, parsedArgs, err
			}
			parsedArgs.ConfigPath = v
			continue
		}
		if v, ok, err := takeValue(args, &i, "-m", "--model"); ok {
			if err != nil {
				return nil, parsedArgs, err
			}
			parsedArgs.Model = v
			continue
		}
		remaining = append(remaining, arg)
	}

	return remaining, parsedArgs, nil
}

// parseExportArgs parses "export ID [--format F] [--output DIR]".
func parseExportArgs(args *Args, remaining []string) error {
	var ids []string
	for i := 0; i < len(remaining); i++ {
		if v, ok, err := takeValue(remaining, &i, "--format"); ok {
			if err != nil {
				return err
			}
			args.Format = v
			continue
		}
		if v, ok, err := takeValue(remaining, &i, "-o", "--output"); ok {
			if err != nil {
				return err
			}
			args.Output = v
			continue
		}
		ids = append(ids, remaining[i])
	}
	return parseIDArg(args, ids, "chatdesk export <conversation-id> [--format md|json] [-o DIR]")
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) error {
	var query []string

	for i := 0; i < len(remaining); i++ {
		if v, ok, err := takeValue(remaining, &i, "-f", "--file"); ok {
			if err != nil {
				return err
			}
			args.File = v
			continue
		}
		if v, ok, err := takeValue(remaining, &i, "-c", "--conversation"); ok {
			if err != nil {
				return err
			}
			args.ConversationID = v
			continue
		}
		if strings.HasPrefix(remaining[i], "-") && remaining[i] != "-" {
			return NewValidationError("flag", remaining[i], "unknown flag for ask")
		}
		query = append(query, remaining[i])
	}

	args.Query = strings.Join(query, " ")
	if strings.TrimSpace(args.Query) == "" && args.File == "" {
		return ErrMissingArgument("question", `chatdesk ask "What is in this file?" --file notes.txt`)
	}
	return nil
}

// parseIDArg reads the single conversation id argument.
func parseIDArg(args *Args, remaining []string, usage string) error {
	if len(remaining) == 0 || strings.TrimSpace(remaining[0]) == "" {
		return ErrMissingArgument("conversation id", usage)
	}
	args.ConversationID = remaining[0]
	return nil
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = strings.ToLower(remaining[0])
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = strings.Join(remaining[2:], " ")
		}
	}
}
