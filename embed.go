package blogfront

import "embed"

// EmbeddedAssets holds the stylesheet and search script served under
// /public/ ahead of the site's own static directory.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
