// Package web embeds the built web app for single-binary distribution.
package web

import "embed"

// Assets contains the production build of the board UI.
//
//go:embed all:build
var Assets embed.FS
