//go:build ignore

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

var (
	m = minify.New()
	// Source asset -> minified asset, both relative to static/.
	assetReplacements = map[string]string{
		"css/site.css": "css/site.min.css",
		"js/admin.js":  "js/admin.min.js",
	}
	mediaTypes = map[string]string{
		".css": "text/css",
		".js":  "text/javascript",
	}
)

func init() {
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/javascript", js.Minify)
}

func main() {
	release := flag.Bool("release", false, "Process assets for release")
	clean := flag.Bool("clean", false, "Clean processed assets and restore original files")
	flag.Parse()

	if *release && *clean {
		log.Fatal("Cannot use -release and -clean flags simultaneously.")
	}

	if *release {
		fmt.Println("Processing assets for release...")
		if err := processAssets(); err != nil {
			log.Fatalf("Failed to process assets for release: %v", err)
		}
		fmt.Println("Assets processed successfully.")
	} else if *clean {
		fmt.Println("Cleaning up processed assets...")
		if err := cleanupAssets(); err != nil {
			log.Fatalf("Failed to clean up assets: %v", err)
		}
		fmt.Println("Cleanup complete.")
	} else {
		fmt.Println("No action specified. Use -release to process assets or -clean to clean up.")
	}
}

func processAssets() error {
	for src, dst := range assetReplacements {
		if err := minifyFile(filepath.Join("static", src), filepath.Join("static", dst)); err != nil {
			return err
		}
	}
	return rewriteTemplates(func(s, src, dst string) string {
		return strings.ReplaceAll(s, "/static/"+src, "/static/"+dst)
	})
}

func cleanupAssets() error {
	if err := rewriteTemplates(func(s, src, dst string) string {
		return strings.ReplaceAll(s, "/static/"+dst, "/static/"+src)
	}); err != nil {
		return err
	}
	for _, dst := range assetReplacements {
		if err := os.Remove(filepath.Join("static", dst)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func minifyFile(src, dst string) error {
	mediaType, ok := mediaTypes[filepath.Ext(src)]
	if !ok {
		return fmt.Errorf("no minifier for %s", src)
	}
	in, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	out, err := m.Bytes(mediaType, in)
	if err != nil {
		return fmt.Errorf("minify %s: %w", src, err)
	}
	fmt.Printf("  %s -> %s (%d -> %d bytes)\n", src, dst, len(in), len(out))
	return os.WriteFile(dst, out, 0o644)
}

// rewriteTemplates applies replace to every template for each asset pair.
func rewriteTemplates(replace func(s, src, dst string) string) error {
	files, err := filepath.Glob(filepath.Join("templates", "*.html"))
	if err != nil {
		return err
	}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		updated := string(data)
		for src, dst := range assetReplacements {
			updated = replace(updated, src, dst)
		}
		if updated != string(data) {
			if err := os.WriteFile(file, []byte(updated), 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}
