package main

import (
	"flag"

	"github.com/goyek/goyek/v2"
)

// Flags for lint task
var (
	lintFix     = flag.Bool("lint-fix", false, "Auto-fix linting issues")
	lintVerbose = flag.Bool("lint-verbose", false, "Verbose linting output")
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		args = []string{"list"}
	}
	goyek.Main(args)
}

// GetLintFix returns the lint-fix flag value
func GetLintFix() bool { return *lintFix }

// GetLintVerbose returns the lint-verbose flag value
func GetLintVerbose() bool { return *lintVerbose }
