package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: img2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Download image URLs and convert them to PDF")
	fmt.Fprintln(w, "  check       Probe URLs with HEAD requests before a run")
	fmt.Fprintln(w, "  doctor      Diagnose environment readiness")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'img2pdf help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: img2pdf convert [flags] [url...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Download images and convert them to PDF documents. URLs come from")
	fmt.Fprintln(w, "positional arguments, --file, and --csv; all sources combine.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input:")
	fmt.Fprintln(w, "  -f, --file <path>         URL-per-line list file (\"-\" = stdin)")
	fmt.Fprintln(w, "      --csv <path>          CSV export with a PREVIEW_URL column")
	fmt.Fprintln(w, "      --base-url <url>      Base URL for relative CSV references")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dest>       Directory or bucket URL (default ./output)")
	fmt.Fprintln(w, "      --combine             Merge all pages into one document")
	fmt.Fprintln(w, "      --keep-images         Also store raw downloads under imgs/")
	fmt.Fprintln(w, "      --dpi <n>             Page size resolution (default 300)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Download:")
	fmt.Fprintln(w, "      --concurrency <n>     Max downloads in flight (default 20)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-request deadline (default 30s)")
	fmt.Fprintln(w, "      --retries <n>         Transient failure retries (default 3)")
	fmt.Fprintln(w, "      --host-rate <f>       Max requests/second per host (0 = off)")
	fmt.Fprintln(w, "      --user-agent <s>      User-Agent header override")
	fmt.Fprintln(w, "      --max-payload <size>  Response body cap (e.g., 50MB)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "  -w, --workers <n>         Conversion pool size (0 = auto)")
	fmt.Fprintln(w, "      --batch-size <n>      Items held in memory per batch (default 100)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Cache:")
	fmt.Fprintln(w, "      --cache-url <url>     Redis URL for the payload cache")
	fmt.Fprintln(w, "      --cache-ttl <d>       Cache entry lifetime (default 24h)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Diagnostics:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --log-level <s>       debug, info, warn, error")
	fmt.Fprintln(w, "      --log-file <path>     Also append logs to this file")
	fmt.Fprintln(w, "      --metrics-addr <addr> Serve Prometheus metrics")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-item detail")
}

// printCheckUsage prints usage for the check command.
func printCheckUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: img2pdf check [flags] <url>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Probe each URL with a HEAD request and report status and declared")
	fmt.Fprintln(w, "content type without downloading anything.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -t, --timeout <d>      Per-request deadline (default 10s)")
	fmt.Fprintln(w, "      --user-agent <s>   User-Agent header")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: img2pdf doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Verify the environment a run would need: destination writable,")
	fmt.Fprintln(w, "config parseable, payload cache reachable.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <dest>    Destination to probe (default ./output)")
	fmt.Fprintln(w, "  -c, --config <name>    Config file name or path")
	fmt.Fprintln(w, "      --cache-url <url>  Redis URL to probe")
	fmt.Fprintln(w, "      --json             Machine-readable output")
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: img2pdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash  Bash completion script")
	fmt.Fprintln(w, "  zsh   Zsh completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(img2pdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(img2pdf completion zsh)\"")
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
	case "check":
		printCheckUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: img2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: img2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
