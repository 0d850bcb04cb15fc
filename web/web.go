// Package web embeds the browser UI served at the site root.
package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html assets/*
var embedded embed.FS

// Index returns the contents of index.html
func Index() ([]byte, error) {
	return fs.ReadFile(embedded, "index.html")
}

// Assets returns the static asset tree rooted at assets/
func Assets() (fs.FS, error) {
	return fs.Sub(embedded, "assets")
}
