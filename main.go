package main

import (
	"io/fs"

	"shieldsite/cmd"
)

// Populated by either assets_dev.go or assets_prod.go at startup.
var templatesFS fs.FS
var staticFS fs.FS

func main() {
	cmd.Execute(templatesFS, staticFS)
}
