// Package client embeds the browser script that keeps a rendered page live.
package client

import (
	"embed"
	"io/fs"
	"net/http"
)

// ScriptName is the file name of the live client.
const ScriptName = "heritage.js"

//go:embed src/*.js
var assets embed.FS

// Assets returns the embedded scripts rooted at src.
func Assets() fs.FS {
	fsys, err := fs.Sub(assets, "src")
	if err != nil {
		panic(err)
	}
	return fsys
}

// Handler serves the embedded scripts. Mount it under a prefix with
// http.StripPrefix.
func Handler() http.Handler {
	files := http.FileServer(http.FS(Assets()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		files.ServeHTTP(w, r)
	})
}

// Script returns the live client source.
func Script() ([]byte, error) {
	return assets.ReadFile("src/" + ScriptName)
}

// FileNames lists the embedded scripts.
func FileNames() []string {
	entries, err := assets.ReadDir("src")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}
