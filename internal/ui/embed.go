package ui

import "embed"

// Dist embeds the page shells and their static assets from ui/dist/.
//
//go:embed all:dist
var Dist embed.FS
