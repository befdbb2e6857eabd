// Package cli provides shared CLI utilities for kozi and koziadmind.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// annotationRequires lists, comma separated, what a command needs at runtime.
const annotationRequires = "kozi.requires"

// Requirement names something a command depends on besides its flags.
type Requirement string

const (
	RequiresDatabase Requirement = "database"
	RequiresHRAPI    Requirement = "hr_api"
	RequiresOpenAI   Requirement = "openai"
	RequiresS3       Requirement = "s3"
	RequiresSMTP     Requirement = "smtp"
	RequiresSession  Requirement = "session"
	RequiresAdmin    Requirement = "admin"
)

// Require annotates cmd with its runtime requirements. It returns cmd so it
// can wrap a command literal.
func Require(cmd *cobra.Command, reqs ...Requirement) *cobra.Command {
	if len(reqs) == 0 {
		return cmd
	}
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	names := requirements(cmd)
	for _, r := range reqs {
		names = append(names, string(r))
	}
	slices.Sort(names)
	names = slices.Compact(names)
	cmd.Annotations[annotationRequires] = strings.Join(names, ",")
	return cmd
}

func requirements(cmd *cobra.Command) []string {
	raw := cmd.Annotations[annotationRequires]
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// FlagSchema represents the JSON schema for a command flag.
type FlagSchema struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Inherited   bool   `json:"inherited,omitempty"`
}

// CommandSchema represents the JSON schema for a command.
type CommandSchema struct {
	Name        string          `json:"name"`
	Use         string          `json:"use,omitempty"`
	Aliases     []string        `json:"aliases,omitempty"`
	Args        []string        `json:"args,omitempty"`
	Description string          `json:"description,omitempty"`
	Long        string          `json:"long,omitempty"`
	Requires    []string        `json:"requires,omitempty"`
	Flags       []FlagSchema    `json:"flags,omitempty"`
	Subcommands []CommandSchema `json:"subcommands,omitempty"`
}

// GenerateSchema generates a JSON schema for a cobra command.
func GenerateSchema(cmd *cobra.Command) CommandSchema {
	schema := CommandSchema{
		Name:        cmd.Name(),
		Use:         cmd.Use,
		Aliases:     cmd.Aliases,
		Args:        positionalArgs(cmd.Use),
		Description: cmd.Short,
		Long:        cmd.Long,
		Requires:    requirements(cmd),
		Flags:       extractFlags(cmd),
	}

	for _, sub := range cmd.Commands() {
		if sub.Name() == "help" || sub.Hidden {
			continue
		}
		schema.Subcommands = append(schema.Subcommands, GenerateSchema(sub))
	}

	return schema
}

// positionalArgs returns the placeholders after the command name in use,
// e.g. "upload <file.pdf>..." yields ["<file.pdf>..."].
func positionalArgs(use string) []string {
	fields := strings.Fields(use)
	if len(fields) < 2 {
		return nil
	}
	return fields[1:]
}

func extractFlags(cmd *cobra.Command) []FlagSchema {
	var flags []FlagSchema

	add := func(inherited bool) func(*pflag.Flag) {
		return func(f *pflag.Flag) {
			if f.Name == "help-json" || f.Name == "help" {
				return
			}
			s := flagToSchema(f)
			s.Inherited = inherited
			flags = append(flags, s)
		}
	}
	cmd.LocalFlags().VisitAll(add(false))
	cmd.InheritedFlags().VisitAll(add(true))

	return flags
}

func flagToSchema(f *pflag.Flag) FlagSchema {
	schema := FlagSchema{
		Name:        f.Name,
		Shorthand:   f.Shorthand,
		Type:        f.Value.Type(),
		Default:     f.DefValue,
		Description: f.Usage,
	}

	// MarkFlagRequired annotates the flag itself.
	if v, ok := f.Annotations[cobra.BashCompOneRequiredFlag]; ok && len(v) > 0 && v[0] == "true" {
		schema.Required = true
	}

	return schema
}

// WriteSchema writes the command schema as indented JSON.
func WriteSchema(w io.Writer, cmd *cobra.Command) error {
	output, err := json.MarshalIndent(GenerateSchema(cmd), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// PrintSchema outputs the command schema as JSON and exits.
func PrintSchema(cmd *cobra.Command) {
	if err := WriteSchema(cmd.OutOrStdout(), cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

// AddHelpJSONFlag adds the --help-json flag to a command.
func AddHelpJSONFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("help-json", false, "Output command schema as JSON")
}

// CheckHelpJSON checks os.Args for --help-json and outputs schema if found.
// Call this before cmd.Execute() to handle the flag before arg validation.
func CheckHelpJSON(rootCmd *cobra.Command) {
	if target := helpJSONTarget(rootCmd, os.Args[1:]); target != nil {
		PrintSchema(target)
	}
}

// helpJSONTarget returns the command named by the words before --help-json,
// or nil when the flag is absent. Arguments after "--" are never flags.
func helpJSONTarget(rootCmd *cobra.Command, args []string) *cobra.Command {
	for i, arg := range args {
		if arg == "--" {
			return nil
		}
		if arg == "--help-json" {
			return findTargetCommand(rootCmd, args[:i])
		}
	}
	return nil
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
