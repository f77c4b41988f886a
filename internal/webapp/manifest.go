// Package webapp serves the installed-app manifest, generated icons and the
// embedded client assets.
package webapp

import "fmt"

const (
	// ThemeColor is the browser chrome color.
	ThemeColor = "#2563eb"
	// BackgroundColor is the splash background.
	BackgroundColor = "#f9fafb"
)

// IconSizes are the square icon edges listed in the manifest.
var IconSizes = []int{72, 96, 128, 144, 152, 192, 384, 512}

// Icon is one manifest icon entry.
type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

// Manifest describes the dashboard as an installable app.
type Manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	Description     string `json:"description"`
	StartURL        string `json:"start_url"`
	Display         string `json:"display"`
	BackgroundColor string `json:"background_color"`
	ThemeColor      string `json:"theme_color"`
	Orientation     string `json:"orientation"`
	Icons           []Icon `json:"icons"`
}

// IconPath returns the served path of the icon with the given edge.
func IconPath(size int) string {
	return fmt.Sprintf("/icons/%s", IconFile(size))
}

// IconFile returns the file name of the icon with the given edge.
func IconFile(size int) string {
	return fmt.Sprintf("icon-%dx%d.png", size, size)
}

// DefaultManifest returns the manifest served at /manifest.json.
func DefaultManifest() Manifest {
	icons := make([]Icon, 0, len(IconSizes))
	for _, size := range IconSizes {
		icons = append(icons, Icon{
			Src:     IconPath(size),
			Sizes:   fmt.Sprintf("%dx%d", size, size),
			Type:    "image/png",
			Purpose: "any maskable",
		})
	}
	return Manifest{
		Name:            "Price Alerts Dashboard",
		ShortName:       "Price Alerts",
		Description:     "Track product prices and get notified when they drop",
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: BackgroundColor,
		ThemeColor:      ThemeColor,
		Orientation:     "portrait-primary",
		Icons:           icons,
	}
}
