package jwwblog

import "embed"

// EmbeddedAssets contains the files shipped with the binary:
// site.js and the default page templates under pages/.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
