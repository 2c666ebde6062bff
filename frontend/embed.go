// Package frontend embeds the client page served for unmatched paths.
package frontend

import "embed"

//go:embed dist
var StaticFiles embed.FS
