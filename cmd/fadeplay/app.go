package main

import (
	"context"
	"errors"
	"time"

	"github.com/opd-ai/fadeout/fade"
	"github.com/opd-ai/fadeout/host"
	"github.com/opd-ai/fadeout/mainloop"
	"github.com/opd-ai/fadeout/settings"
	"github.com/sirupsen/logrus"
)

// app wires the reference host together around one FadeOut plugin.
type app struct {
	store  *settings.Store
	loop   *mainloop.Loop
	menu   *host.Menu
	chain  *host.EffectChain
	player *host.Player
	plugin *fade.Plugin
	files  []string
}

func newApp(store *settings.Store, out host.Output, opts host.PlayerOptions, files []string) *app {
	chain := host.NewEffectChain()
	return &app{
		store:  store,
		loop:   mainloop.New(),
		menu:   host.NewMenu(),
		chain:  chain,
		player: host.NewPlayer(chain, out, opts),
		plugin: fade.New(nil),
		files:  files,
	}
}

// start loads the plugin into the effect chain and binds it to the host.
func (a *app) start() error {
	a.chain.Add(a.plugin, a.plugin.Info().Order)
	err := a.plugin.Init(fade.Host{
		Main:     a.loop,
		Playback: a.player,
		Settings: a.store,
		Menu:     a.menu,
	})
	if err != nil {
		a.chain.Remove(a.plugin)
		return err
	}
	return nil
}

// close runs on the main context after the loop has stopped.
func (a *app) close() {
	a.player.Stop()
	a.plugin.Cleanup()
	a.chain.Remove(a.plugin)
	a.loop.Close()

	if err := a.saveSettings(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "app.close",
			"error":    err.Error(),
		}).Error("Failed to save settings")
	}
}

func (a *app) saveSettings() error {
	if a.store.Path() == "" || !a.store.Dirty() {
		return nil
	}
	return a.store.Save()
}

// fadeOut activates the plugin's menu item. It must run on the main context.
func (a *app) fadeOut() bool {
	ok := a.menu.ActivateLabel(fade.MenuLabel)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function": "app.fadeOut",
			"label":    fade.MenuLabel,
		}).Warn("Menu item not registered")
	}
	return ok
}

// adjustDuration changes the fade duration by delta seconds and saves it.
func (a *app) adjustDuration(delta float64) (time.Duration, error) {
	seconds := a.plugin.Duration().Seconds() + delta
	seconds = float64(int64(seconds*10+0.5)) / 10

	d, err := a.plugin.SetDuration(seconds)
	if err != nil {
		return 0, err
	}
	return d, a.saveSettings()
}

// runHeadless drives the main loop on the calling goroutine until playback
// ends or ctx is cancelled.
func (a *app) runHeadless(ctx context.Context, fadeAfter time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if fadeAfter > 0 {
		timer := time.AfterFunc(fadeAfter, func() {
			a.loop.Post(func() { a.fadeOut() })
		})
		defer timer.Stop()
	}

	done := a.player.Done()
	go func() {
		select {
		case <-done:
			cancel()
		case <-ctx.Done():
		}
	}()

	logrus.WithFields(logrus.Fields{
		"function":   "app.runHeadless",
		"fade_after": fadeAfter,
	}).Info("Running without terminal UI")

	err := a.loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
