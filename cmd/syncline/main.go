package main

import (
	"os"
	"strings"

	"syncline/internal/cli"
)

// Persistent root flags that take a separate value token. Needed so the
// direct-lookup rewrite below can find the first positional argument.
var valueFlags = map[string]bool{
	"--dir":       true,
	"--workspace": true,
	"--format":    true,
}

func isClipID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "clip-") && len(s) > len("clip-")
}

// rewriteDirectClipLookup lets `syncline <clip-id>` behave like
// `syncline clips show <clip-id>`. Cobra would treat the id as an unknown
// subcommand, so argv is rewritten before parsing. Flags may precede the id.
func rewriteDirectClipLookup(argv []string) []string {
	insert := func(at int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:at]...)
		out = append(out, "clips", "show")
		return append(out, argv[at:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isClipID(argv[i+1]) {
				return insert(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if valueFlags[a] && !strings.Contains(a, "=") {
				i++ // skip the flag's value
			}
			continue
		}
		// First positional token.
		if isClipID(a) {
			return insert(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectClipLookup(os.Args)

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
