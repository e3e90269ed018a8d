package fade

// MenuLabel is the label of the menu item that starts a fade.
const MenuLabel = "Fade out"

// Info describes the plugin to the host.
type Info struct {
	Name   string
	Domain string
	About  string

	// Order positions the effect in the host's effect chain; lower runs first.
	Order int

	// ChangesOutput reports whether the effect alters the audio it is given.
	ChangesOutput bool
}

// WidgetKind selects how a preferences widget is rendered.
type WidgetKind int

const (
	// WidgetLabel is static text.
	WidgetLabel WidgetKind = iota
	// WidgetSpinFloat is a numeric spin box bound to a float setting.
	WidgetSpinFloat
)

// Widget is one entry of the plugin's preferences page. Hosts render it with
// their own toolkit and bind spin widgets to Section/Key in their settings store.
type Widget struct {
	Kind    WidgetKind
	Label   string
	Section string
	Key     string
	Min     float64
	Max     float64
	Step    float64
	Unit    string
}

var pluginInfo = Info{
	Name:   "FadeOut",
	Domain: "audacious-plugin-fadeout",
	About: "FadeOut Plugin\n\n" +
		"Provides a menu entry for smoothly fading out any " +
		"playing song before eventually stopping playback.",
	Order:         9,
	ChangesOutput: true,
}
