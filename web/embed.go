package web

import "embed"

// Templates embeds document and email templates rendered server-side.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static embeds the compiled single-page app.
//
//go:embed static/*
var Static embed.FS
