package web

import "embed"

// StaticFS holds the embedded static assets (stylesheet and the CSRF header hook).
//
//go:embed static/*
var StaticFS embed.FS
