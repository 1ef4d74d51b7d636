package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/stigoleg/mouse-jiggler/internal/config"
)

// This small tool generates shell completions and a man page from the
// jiggler's flag table. It emits plain completions for bash, zsh and fish
// and a minimal roff man page that mirrors --help.

const (
	appName        = config.Name
	appDescription = "Keeps the computer active by moving the pointer in small, human-like curves."
)

func main() {
	out := flag.String("out", ".", "Output directory")
	flag.Parse()

	flags := config.Docs()
	if err := writeCompletions(filepath.Join(*out, "docs", "completions"), flags); err != nil {
		log.Fatal(err)
	}
	if err := writeMan(filepath.Join(*out, "man"), flags); err != nil {
		log.Fatal(err)
	}
}

func writeCompletions(base string, flags []config.FlagDoc) error {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return err
	}

	files := map[string]string{
		appName + ".bash": bashCompletion(flags),
		"_" + appName:     zshCompletion(flags),
		appName + ".fish": fishCompletion(flags),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(base, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func bashCompletion(flags []config.FlagDoc) string {
	var opts []string
	for _, f := range flags {
		if f.Short != "" {
			opts = append(opts, f.Short)
		}
		opts = append(opts, f.Long)
	}

	var b strings.Builder
	b.WriteString("_" + appName + "() {\n")
	b.WriteString("  local cur opts\n")
	b.WriteString("  COMPREPLY=()\n")
	b.WriteString("  cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("  opts=\"" + strings.Join(opts, " ") + "\"\n")
	b.WriteString("  if [[ ${cur} == -* ]] ; then\n")
	b.WriteString("    COMPREPLY=( $(compgen -W \"${opts}\" -- ${cur}) )\n")
	b.WriteString("    return 0\n")
	b.WriteString("  fi\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _" + appName + " " + appName + "\n")
	return b.String()
}

func zshCompletion(flags []config.FlagDoc) string {
	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		name := f.Long
		suffix := ""
		if f.Arg != "" {
			// zsh requires = for options with arguments
			name += "="
			suffix = ":value:" + strings.Trim(f.Arg, "<>")
		}
		parts = append(parts, fmt.Sprintf("'%s[%s]%s'", name, zshEscape(f.Desc), suffix))
	}
	return "#compdef " + appName + "\n_arguments " + strings.Join(parts, " ") + "\n"
}

func fishCompletion(flags []config.FlagDoc) string {
	var b strings.Builder
	b.WriteString("complete -c " + appName + " -f\n")
	for _, f := range flags {
		b.WriteString("complete -c " + appName)
		if f.Short != "" {
			b.WriteString(" -s " + strings.TrimPrefix(f.Short, "-"))
		}
		b.WriteString(" -l " + strings.TrimPrefix(f.Long, "--"))
		if f.Arg != "" {
			b.WriteString(" -r")
		} else {
			b.WriteString(" -f")
		}
		b.WriteString(" -d \"" + strings.ReplaceAll(f.Desc, "\"", "\\\"") + "\"\n")
	}
	return b.String()
}

// zshEscape keeps descriptions from closing the quoted spec or the
// bracketed description early.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", "", "[", "(", "]", ")")
	return r.Replace(s)
}

func writeMan(dir string, flags []config.FlagDoc) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, appName+".1"), []byte(manPage(flags)), 0o644)
}

func manPage(flags []config.FlagDoc) string {
	var b strings.Builder
	b.WriteString(".TH \"" + strings.ToUpper(appName) + "\" \"1\" \"\" \"mouse-jiggler\" \"User Commands\"\n")
	b.WriteString(".SH NAME\n" + appName + " \\- " + appDescription + "\n")
	b.WriteString(".SH SYNOPSIS\n.B " + appName + "\n")

	var synopsis []string
	for _, f := range flags {
		synopsis = append(synopsis, "["+roff(flagNames(f, "|"))+"]")
	}
	b.WriteString(strings.Join(synopsis, " ") + "\n")

	b.WriteString(".SH DESCRIPTION\n" + appDescription + "\n")
	b.WriteString("Settings are read from settings.toml in the user configuration directory; flags override them for one run.\n")
	b.WriteString(".SH OPTIONS\n")
	for _, f := range flags {
		b.WriteString(".TP\n\\fB" + roff(flagNames(f, ", ")) + "\\fR\n" + roff(f.Desc) + "\n")
	}

	b.WriteString(".SH EXAMPLES\n")
	examples := []struct{ cmd, desc string }{
		{appName, "Start the interactive TUI."},
		{appName + " -d 2h30m", "Jiggle for 2 hours 30 minutes."},
		{appName + " -c 17:00", "Jiggle until 5:00 PM."},
		{appName + " --zen=false --min 30 --max 60", "Jiggle continuously every 30 to 60 seconds."},
		{appName + " --headless", "Start jiggling without the TUI."},
	}
	for _, ex := range examples {
		b.WriteString(".TP\n\\fB" + roff(ex.cmd) + "\\fR\n" + ex.desc + "\n")
	}
	return b.String()
}

func flagNames(f config.FlagDoc, sep string) string {
	names := f.Long
	if f.Short != "" {
		names = f.Short + sep + f.Long
	}
	if f.Arg != "" {
		names += " " + f.Arg
	}
	return names
}

// roff escapes hyphens so they render as minus signs.
func roff(s string) string {
	return strings.ReplaceAll(s, "-", "\\-")
}
