package noteblocks

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the release of the library.
var Version = strings.TrimSpace(rawVersion)
