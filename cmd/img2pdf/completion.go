package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long  string // --output
	Short string // -o (empty if none)
	Bool  bool   // true when the flag takes no value
	Desc  string // help text
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet,
// keeping the FlagSet as the single source of truth for flag inventory.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		flags = append(flags, flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Bool:  f.Value.Type() == "bool",
			Desc:  f.Usage,
		})
	})
	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	convert := extractFlagsFromFlagSet(buildConvertFlagSet(&convertFlags{}))

	return []commandDef{
		{Name: "convert", Desc: "Download image URLs and convert them to PDF", Flags: convert},
		{Name: "check", Desc: "Probe URLs with HEAD requests"},
		{Name: "doctor", Desc: "Diagnose environment readiness"},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	switch Shell(args[0]) {
	case ShellBash:
		generateBash(env.Stdout)
	case ShellZsh:
		generateZsh(env.Stdout)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh)", ErrUnsupportedShell, args[0])
	}
	return nil
}

// generateBash writes a bash completion script.
func generateBash(w io.Writer) {
	commands := getCommands()

	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name
	}

	fmt.Fprintln(w, "# bash completion for img2pdf")
	fmt.Fprintln(w, "_img2pdf() {")
	fmt.Fprintln(w, "  local cur prev words cword")
	fmt.Fprintln(w, "  _init_completion || return")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  local commands=%q\n", strings.Join(names, " "))
	fmt.Fprintln(w, "  if [[ $cword -eq 1 ]]; then")
	fmt.Fprintln(w, "    COMPREPLY=($(compgen -W \"$commands\" -- \"$cur\"))")
	fmt.Fprintln(w, "    return")
	fmt.Fprintln(w, "  fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  case ${words[1]} in")
	for _, c := range commands {
		if len(c.Flags) == 0 {
			continue
		}
		opts := make([]string, 0, len(c.Flags))
		for _, f := range c.Flags {
			opts = append(opts, "--"+f.Long)
		}
		fmt.Fprintf(w, "    %s)\n", c.Name)
		fmt.Fprintf(w, "      COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(opts, " "))
		fmt.Fprintln(w, "      ;;")
	}
	fmt.Fprintln(w, "    completion)")
	fmt.Fprintln(w, "      COMPREPLY=($(compgen -W \"bash zsh\" -- \"$cur\"))")
	fmt.Fprintln(w, "      ;;")
	fmt.Fprintln(w, "  esac")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "complete -F _img2pdf img2pdf")
}

// generateZsh writes a zsh completion script.
func generateZsh(w io.Writer) {
	commands := getCommands()

	fmt.Fprintln(w, "#compdef img2pdf")
	fmt.Fprintln(w, "_img2pdf() {")
	fmt.Fprintln(w, "  local -a commands")
	fmt.Fprintln(w, "  commands=(")
	for _, c := range commands {
		fmt.Fprintf(w, "    '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	fmt.Fprintln(w, "  )")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  if (( CURRENT == 2 )); then")
	fmt.Fprintln(w, "    _describe 'command' commands")
	fmt.Fprintln(w, "    return")
	fmt.Fprintln(w, "  fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  case $words[2] in")
	for _, c := range commands {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(w, "    %s)\n", c.Name)
		fmt.Fprintln(w, "      _arguments \\")
		for i, f := range c.Flags {
			spec := "--" + f.Long
			if !f.Bool {
				spec += "="
			}
			line := fmt.Sprintf("        '%s[%s]'", spec, zshEscape(f.Desc))
			if i < len(c.Flags)-1 {
				line += " \\"
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w, "      ;;")
	}
	fmt.Fprintln(w, "    completion)")
	fmt.Fprintln(w, "      _values 'shell' bash zsh")
	fmt.Fprintln(w, "      ;;")
	fmt.Fprintln(w, "  esac")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "_img2pdf \"$@\"")
}

// zshEscape neutralizes characters that would break a zsh spec string.
func zshEscape(s string) string {
	s = strings.ReplaceAll(s, "'", "'\\''")
	s = strings.ReplaceAll(s, "[", "\\[")
	return strings.ReplaceAll(s, "]", "\\]")
}
