// Package cli provides shared CLI utilities for roadmap and roadmapd.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// AnnotationSessionCommands lists the commands an interactive command accepts
// once running, one "name<TAB>description" per line.
const AnnotationSessionCommands = "roadmap/session-commands"

// SessionCommand is a command typed inside an interactive session.
type SessionCommand struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SessionCommandsAnnotation encodes cmds for cobra.Command.Annotations.
func SessionCommandsAnnotation(cmds []SessionCommand) map[string]string {
	lines := make([]string, 0, len(cmds))
	for _, c := range cmds {
		lines = append(lines, c.Name+"\t"+c.Description)
	}
	return map[string]string{AnnotationSessionCommands: strings.Join(lines, "\n")}
}

// SessionHelp renders cmds as an aligned help block.
func SessionHelp(cmds []SessionCommand) string {
	width := 0
	for _, c := range cmds {
		width = max(width, len(c.Name))
	}
	var b strings.Builder
	for i, c := range cmds {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %-*s  %s", width, c.Name, c.Description)
	}
	return b.String()
}

// FlagSchema represents the JSON schema for a command flag.
type FlagSchema struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// CommandSchema represents the JSON schema for a command.
type CommandSchema struct {
	Name            string           `json:"name"`
	Use             string           `json:"use,omitempty"`
	Aliases         []string         `json:"aliases,omitempty"`
	Description     string           `json:"description,omitempty"`
	Long            string           `json:"long,omitempty"`
	Flags           []FlagSchema     `json:"flags,omitempty"`
	InheritedFlags  []FlagSchema     `json:"inherited_flags,omitempty"`
	SessionCommands []SessionCommand `json:"session_commands,omitempty"`
	Subcommands     []CommandSchema  `json:"subcommands,omitempty"`
}

// GenerateSchema generates a JSON schema for a cobra command.
func GenerateSchema(cmd *cobra.Command) CommandSchema {
	schema := CommandSchema{
		Name:            cmd.Name(),
		Use:             cmd.Use,
		Aliases:         cmd.Aliases,
		Description:     cmd.Short,
		Long:            cmd.Long,
		Flags:           collectFlags(cmd.LocalFlags()),
		InheritedFlags:  collectFlags(cmd.InheritedFlags()),
		SessionCommands: sessionCommands(cmd),
	}

	for _, sub := range cmd.Commands() {
		if sub.Name() == "help" || sub.Hidden {
			continue
		}
		schema.Subcommands = append(schema.Subcommands, GenerateSchema(sub))
	}

	return schema
}

func collectFlags(set *pflag.FlagSet) []FlagSchema {
	var flags []FlagSchema

	set.VisitAll(func(f *pflag.Flag) {
		if f.Name == "help-json" || f.Name == "help" || f.Hidden {
			return
		}
		flags = append(flags, flagToSchema(f))
	})

	return flags
}

func flagToSchema(f *pflag.Flag) FlagSchema {
	_, required := f.Annotations[cobra.BashCompOneRequiredFlag]
	return FlagSchema{
		Name:        f.Name,
		Shorthand:   f.Shorthand,
		Type:        f.Value.Type(),
		Default:     f.DefValue,
		Description: f.Usage,
		Required:    required,
	}
}

func sessionCommands(cmd *cobra.Command) []SessionCommand {
	raw := cmd.Annotations[AnnotationSessionCommands]
	if raw == "" {
		return nil
	}
	var out []SessionCommand
	for _, line := range strings.Split(raw, "\n") {
		name, desc, _ := strings.Cut(line, "\t")
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, SessionCommand{Name: name, Description: strings.TrimSpace(desc)})
		}
	}
	return out
}

// PrintSchema outputs the command schema as JSON and exits.
func PrintSchema(cmd *cobra.Command) {
	schema := GenerateSchema(cmd)
	output, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(output))
	os.Exit(0)
}

// AddHelpJSONFlag adds the --help-json flag to a command.
func AddHelpJSONFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("help-json", false, "Output command schema as JSON")
}

// CheckHelpJSON checks os.Args for --help-json and outputs schema if found.
// Call this before cmd.Execute() to handle the flag before arg validation.
func CheckHelpJSON(rootCmd *cobra.Command) {
	for i, arg := range os.Args {
		if arg == "--help-json" {
			targetCmd := findTargetCommand(rootCmd, os.Args[1:i])
			PrintSchema(targetCmd)
		}
	}
}

func findTargetCommand(cmd *cobra.Command, args []string) *cobra.Command {
	if len(args) == 0 {
		return cmd
	}

	for _, sub := range cmd.Commands() {
		if sub.Name() == args[0] || sub.HasAlias(args[0]) {
			return findTargetCommand(sub, args[1:])
		}
	}

	return cmd
}
