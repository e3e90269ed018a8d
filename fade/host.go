package fade

// MainContext is the host's main/control execution context.
//
// Post queues fn to run there and returns immediately. It is safe to call
// from any goroutine, including the real-time audio path, and must not block.
type MainContext interface {
	Post(fn func())
}

// Playback controls the host transport. Stop is only ever called from a
// function posted to the MainContext.
type Playback interface {
	Stop()
}

// Settings is the host's persisted settings store. Values are addressed by
// section and key; defaults are strings, as the host stores them.
type Settings interface {
	SetDefaults(section string, defaults map[string]string)
	GetDouble(section, key string) float64
	SetDouble(section, key string, value float64)
}

// MenuItemID identifies a registered menu item.
type MenuItemID uint64

// Menu registers user-triggerable actions in the host's main menu. The
// activate callback runs on the MainContext.
type Menu interface {
	AddItem(label string, activate func()) MenuItemID
	RemoveItem(id MenuItemID)
}

// Host bundles the collaborators the plugin needs from the media player.
type Host struct {
	Main     MainContext
	Playback Playback
	Settings Settings
	Menu     Menu
}

func (h Host) validate() error {
	switch {
	case h.Main == nil:
		return ErrMissingHost
	case h.Playback == nil:
		return ErrMissingHost
	case h.Settings == nil:
		return ErrMissingHost
	case h.Menu == nil:
		return ErrMissingHost
	}
	return nil
}
