// Completion: 100% - Usage text complete
package main

import (
	"fmt"
	"io"
)

// printUsage prints the CLI's help text, adapted from the teacher's own
// cmdHelp (cli.go) to this interpreter's much smaller flag surface
// (--source, --indent, --help, --version; no subcommands).
func printUsage(w io.Writer) {
	fmt.Fprintf(w, `%s - an interpreter for the doubt language

USAGE:
    doubt [flags] [-- program-args...]

FLAGS:
    --source <path>     Source file to run (default %q)
    --indent <string>   Indentation unit (default four spaces)
    --help              Show this help message
    --version           Show version information

ENVIRONMENT:
    DOUBT_SOURCE        Fallback for --source when the flag is omitted
    DOUBT_INDENT        Fallback for --indent when the flag is omitted

EXAMPLES:
    doubt --source hello.doubt
    doubt --source program.doubt --indent "  "
`, versionString, defaultSourcePath)
}
