package main

import (
	"errors"
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
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// argKind describes what a command's positional arguments complete to.
type argKind int

const (
	argNone argKind = iota
	argFiles
	argDirs
	argWords
)

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
	Args  argKind
	Glob  string   // for argFiles, e.g. "*.epub"
	Words []string // for argWords
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"converter": {Values: []string{"auto", "pandoc", "native"}},
	"log-level": {Values: []string{"debug", "info", "warn", "error"}},

	// File flags with glob patterns
	"config": {FileGlob: "*.yaml,*.yml,*.json"},
	"pandoc": {FileGlob: "*"},

	// Directory flags
	"output": {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	convertDefs := extractFlagsFromFlagSet(newConvertFlagSet(&convertFlags{}))
	batchDefs := extractFlagsFromFlagSet(newBatchFlagSet(&convertFlags{}))
	doctorDefs := extractFlagsFromFlagSet(newDoctorFlagSet(&doctorFlags{}))

	return []commandDef{
		{Name: "convert", Desc: "Convert EPUB files to Markdown", Flags: convertDefs, Args: argFiles, Glob: "*.epub"},
		{Name: "batch", Desc: "Convert every EPUB in a directory tree", Flags: batchDefs, Args: argDirs},
		{Name: "doctor", Desc: "Check the conversion environment", Flags: doctorDefs},
		{Name: "completion", Desc: "Generate shell completion script", Args: argWords, Words: []string{"bash", "zsh", "fish"}},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command", Args: argWords, Words: commandNames()},
	}
}

// commandNames lists the top-level commands.
func commandNames() []string {
	return []string{"convert", "batch", "doctor", "completion", "version", "help"}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = generateBash(getCommands())
	case ShellZsh:
		script = generateZsh(getCommands())
	case ShellFish:
		script = generateFish(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// flagWords lists every spelling of every flag, for word-list completion.
func flagWords(flags []flagDef) string {
	words := make([]string, 0, len(flags)*2)
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return strings.Join(words, " ")
}

// generateBash renders a bash script driven by compgen.
func generateBash(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# bash completion for epub2md\n")
	b.WriteString("_epub2md_completions() {\n")
	b.WriteString("    local cur prev\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", strings.Join(commandNames(), " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${COMP_WORDS[1]}\" in\n")

	for _, cmd := range cmds {
		fmt.Fprintf(&b, "    %s)\n", cmd.Name)

		var valued []flagDef
		for _, f := range cmd.Flags {
			if f.Type == flagEnum || f.Type == flagFile || f.Type == flagDir {
				valued = append(valued, f)
			}
		}
		if len(valued) > 0 {
			b.WriteString("        case \"${prev}\" in\n")
			for _, f := range valued {
				pattern := "--" + f.Long
				if f.Short != "" {
					pattern += "|-" + f.Short
				}
				switch f.Type {
				case flagEnum:
					fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W %q -- \"${cur}\")); return ;;\n", pattern, strings.Join(f.Values, " "))
				case flagDir:
					fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -d -- \"${cur}\")); return ;;\n", pattern)
				default:
					fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -f -- \"${cur}\")); return ;;\n", pattern)
				}
			}
			b.WriteString("        esac\n")
		}

		if len(cmd.Flags) > 0 {
			b.WriteString("        if [[ ${cur} == -* ]]; then\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", flagWords(cmd.Flags))
			b.WriteString("            return\n")
			b.WriteString("        fi\n")
		}

		switch cmd.Args {
		case argFiles:
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -f -X '!%s' -- \"${cur}\") $(compgen -d -- \"${cur}\"))\n", cmd.Glob)
		case argDirs:
			b.WriteString("        COMPREPLY=($(compgen -d -- \"${cur}\"))\n")
		case argWords:
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", strings.Join(cmd.Words, " "))
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -o filenames -F _epub2md_completions epub2md\n")
	return b.String()
}

// zshEscape escapes a description inside an _arguments entry.
var zshEscape = strings.NewReplacer("[", `\[`, "]", `\]`, ":", `\:`, "'", `'\''`)

// generateZsh renders a zsh script using _arguments and _describe.
func generateZsh(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("#compdef epub2md\n\n")
	b.WriteString("_epub2md() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", cmd.Name, zshEscape.Replace(cmd.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")

	for _, cmd := range cmds {
		fmt.Fprintf(&b, "    %s)\n", cmd.Name)
		b.WriteString("        _arguments \\\n")
		for _, f := range cmd.Flags {
			desc := zshEscape.Replace(f.Desc)
			action := ""
			switch f.Type {
			case flagBool:
			case flagEnum:
				action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
			case flagDir:
				action = ":directory:_files -/"
			case flagFile:
				action = ":file:_files"
			default:
				action = ":" + f.Long + ":"
			}
			if f.Short != "" {
				fmt.Fprintf(&b, "            '(-%s --%s)'{-%s,--%s}'[%s]%s' \\\n", f.Short, f.Long, f.Short, f.Long, desc, action)
			} else {
				fmt.Fprintf(&b, "            '--%s[%s]%s' \\\n", f.Long, desc, action)
			}
		}
		switch cmd.Args {
		case argFiles:
			fmt.Fprintf(&b, "            '*:file:_files -g \"%s\"'\n", cmd.Glob)
		case argDirs:
			b.WriteString("            '*:directory:_files -/'\n")
		case argWords:
			fmt.Fprintf(&b, "            '1:argument:(%s)'\n", strings.Join(cmd.Words, " "))
		default:
			b.WriteString("            '*: :'\n")
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _epub2md epub2md\n")
	return b.String()
}

// fishEscape escapes a description for a single-quoted fish string.
var fishEscape = strings.NewReplacer(`\`, `\\`, "'", `\'`)

// generateFish renders a fish script of complete commands.
func generateFish(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# fish completion for epub2md\n")
	b.WriteString("function __fish_epub2md_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_epub2md_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c epub2md -f\n")

	for _, cmd := range cmds {
		fmt.Fprintf(&b, "complete -c epub2md -n __fish_epub2md_needs_command -a %s -d '%s'\n", cmd.Name, fishEscape.Replace(cmd.Desc))
	}

	for _, cmd := range cmds {
		cond := fmt.Sprintf("'__fish_epub2md_using_command %s'", cmd.Name)
		for _, f := range cmd.Flags {
			line := fmt.Sprintf("complete -c epub2md -n %s -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			case flagFile:
				line += " -r -F"
			default:
				line += " -x"
			}
			fmt.Fprintf(&b, "%s -d '%s'\n", line, fishEscape.Replace(f.Desc))
		}

		switch cmd.Args {
		case argFiles:
			fmt.Fprintf(&b, "complete -c epub2md -n %s -a '(__fish_complete_suffix %s)'\n", cond, strings.TrimPrefix(cmd.Glob, "*"))
		case argDirs:
			fmt.Fprintf(&b, "complete -c epub2md -n %s -a '(__fish_complete_directories)'\n", cond)
		case argWords:
			fmt.Fprintf(&b, "complete -c epub2md -n %s -a '%s'\n", cond, strings.Join(cmd.Words, " "))
		}
	}

	return b.String()
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: epub2md completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(epub2md completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(epub2md completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    epub2md completion fish > ~/.config/fish/completions/epub2md.fish")
}
