package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// placeholderPattern matches $$, ${VAR}, and ${VAR:-default}. Bare
// $VAR is deliberately not expanded: credential material must be
// referenced explicitly or not at all.
var placeholderPattern = regexp.MustCompile(`\$\$|\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvStrict expands environment placeholders in s.
//
// Semantics:
//   - `${VAR}` expands to the variable's value; if VAR is missing
//     from the environment, the whole expansion errors and names
//     every missing variable.
//   - `${VAR:-default}` expands to the default when VAR is unset.
//   - `$$` emits a literal `$` (escape hatch).
//   - Bare `$VAR` and stray `$` pass through unchanged.
func ExpandEnvStrict(s string) (string, error) {
	missing := make(map[string]struct{})

	out := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		if match == "$$" {
			return "$"
		}

		groups := placeholderPattern.FindStringSubmatch(match)
		name := groups[1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if strings.HasPrefix(match, "${"+name+":-") {
			return groups[2]
		}
		missing[name] = struct{}{}
		return match
	})

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", fmt.Errorf("missing required environment variables: %s", strings.Join(names, ", "))
	}
	return out, nil
}
