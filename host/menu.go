package host

import (
	"sync"

	"github.com/opd-ai/fadeout/fade"
	"github.com/sirupsen/logrus"
)

// MenuItem is a registered menu entry.
type MenuItem struct {
	ID    fade.MenuItemID
	Label string
}

type menuEntry struct {
	MenuItem
	activate func()
}

// Menu is the host's main menu. Items are kept in registration order.
type Menu struct {
	mu    sync.Mutex
	next  fade.MenuItemID
	items []menuEntry
}

// NewMenu returns an empty menu.
func NewMenu() *Menu {
	return &Menu{}
}

// AddItem registers an action and returns its ID.
func (m *Menu) AddItem(label string, activate func()) fade.MenuItemID {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	m.items = append(m.items, menuEntry{
		MenuItem: MenuItem{ID: m.next, Label: label},
		activate: activate,
	})

	logrus.WithFields(logrus.Fields{
		"function": "Menu.AddItem",
		"label":    label,
		"id":       m.next,
	}).Debug("Menu item added")

	return m.next
}

// RemoveItem unregisters an action. Unknown IDs are ignored.
func (m *Menu) RemoveItem(id fade.MenuItemID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			logrus.WithFields(logrus.Fields{
				"function": "Menu.RemoveItem",
				"label":    item.Label,
				"id":       id,
			}).Debug("Menu item removed")
			return
		}
	}
}

// Items returns the registered items in order.
func (m *Menu) Items() []MenuItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]MenuItem, len(m.items))
	for i, item := range m.items {
		items[i] = item.MenuItem
	}
	return items
}

// Activate runs the action with the given ID on the calling goroutine, which
// must be the main context. It reports whether the item exists.
func (m *Menu) Activate(id fade.MenuItemID) bool {
	m.mu.Lock()
	var activate func()
	for _, item := range m.items {
		if item.ID == id {
			activate = item.activate
			break
		}
	}
	m.mu.Unlock()

	if activate == nil {
		return false
	}
	activate()
	return true
}

// ActivateLabel runs the first action with the given label.
func (m *Menu) ActivateLabel(label string) bool {
	m.mu.Lock()
	var id fade.MenuItemID
	for _, item := range m.items {
		if item.Label == label {
			id = item.ID
			break
		}
	}
	m.mu.Unlock()

	if id == 0 {
		return false
	}
	return m.Activate(id)
}
