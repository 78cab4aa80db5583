// Package all imports all built-in sources for side-effect registration.
//
// Import this package from your main to ensure all sources are registered:
//   import _ "github.com/Antoine-pa/paris-sportifs/internal/parser/parsers/all"
package all

import (
	_ "github.com/Antoine-pa/paris-sportifs/internal/parser/parsers/pmu"
	_ "github.com/Antoine-pa/paris-sportifs/internal/parser/parsers/winamax"
)
