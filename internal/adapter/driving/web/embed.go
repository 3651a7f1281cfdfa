package web

import "embed"

// StaticFS holds the embedded static assets (CSS, counter and CSRF scripts).
//
//go:embed static/*
var StaticFS embed.FS
