package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert a markdown file to a Word document or PDF")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2docx help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx convert <input.md> [output] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a markdown file to a styled Word document, or to PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input     Markdown file (.md or .markdown)")
	fmt.Fprintln(w, "  output    Output file (default: input name with .docx or .pdf)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --pdf                     Produce a PDF instead of a Word document")
	fmt.Fprintln(w, "  -o, --output <path>           Output file path")
	fmt.Fprintln(w, "  -c, --config <name>           Config file name or path")
	fmt.Fprintln(w, "  -t, --timeout <dur>           Diagram rendering timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --diagram-endpoint <url>  Diagram rendering service base URL")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                   Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                 Show timing details")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "An output file ending in .pdf implies --pdf.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2docx version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2docx help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
