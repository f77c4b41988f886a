package webapp

import (
	"embed"
	"io/fs"
)

//go:embed assets
var assets embed.FS

// Static returns the client assets served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
