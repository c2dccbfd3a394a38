package theme

// Theming for the selection window: palette and ttk styles for the light
// and dark variants.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
	_ "modernc.org/tk9.0/themes/azure"
)

// PaletteSnapshot holds the semantic colors of one variant.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Accent    string
	Text      string
	TextMuted string
}

var (
	light = PaletteSnapshot{AppBg: "#f7f9fb", Surface: "#ffffff", Accent: "#10b981", Text: "#1e293b", TextMuted: "#64748b"}
	dark  = PaletteSnapshot{AppBg: "#0f172a", Surface: "#1e293b", Accent: "#10b981", Text: "#f1f5f9", TextMuted: "#94a3b8"}
)

// StyleStatusLabel is the hint line under the image.
const StyleStatusLabel = "status.TLabel"

var darkMode bool

// CurrentPalette returns colors for the active variant.
func CurrentPalette() PaletteSnapshot {
	if darkMode {
		return dark
	}
	return light
}

// Init activates the azure theme variant and configures the styles.
func Init(useDark bool) {
	darkMode = useDark
	p := CurrentPalette()
	name := "azure light"
	if useDark {
		name = "azure dark"
	}
	_ = ActivateTheme(name)
	App.Configure(Background(p.AppBg))
	StyleConfigure(StyleStatusLabel,
		Foreground(p.TextMuted),
		Background(p.Surface),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("sunken"),
	)
}
