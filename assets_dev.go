//go:build !release

package main

import (
	"log"
	"os"
	"path/filepath"
)

// Debug builds read templates and static files from disk, relative to
// SHIELD_ASSETS_DIR when set.
func init() {
	root := os.Getenv("SHIELD_ASSETS_DIR")
	if root == "" {
		root = "."
	}
	log.Printf("Running in debug mode, using live assets from %s.", root)
	templatesFS = os.DirFS(filepath.Join(root, "templates"))
	staticFS = os.DirFS(filepath.Join(root, "static"))
}
