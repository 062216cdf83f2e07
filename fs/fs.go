package appfs

import "embed"

// FS holds the SQL migrations, email templates and content data shipped with the binaries.
// assets is embedded with all: so that the _base email layouts are included.
//
//go:embed migrations all:assets
var FS embed.FS
