// Package fade implements the FadeOut effect plugin: a menu action that ramps
// the decoded audio stream down to silence over a configurable duration and
// then stops playback.
//
// # Architecture Overview
//
// Two components share one State value:
//
//	Menu action -> Plugin.FadeOut -> Controller.Start -> session goroutine
//	Host audio pipeline -> Plugin.Start / Process / Finish
//
// The session goroutine multiplies the gain reduction by a constant step
// factor every 10ms until the silence threshold is reached. The audio
// pipeline divides every sample by the current gain reduction. A gain
// reduction of exactly 1.0 means "not fading".
//
// # Ramp
//
// The step factor for a fade of d seconds is
//
//	factor = MaxReduction ^ (1 / (100 * d))
//
// so the gain reduction reaches MaxReduction after exactly 100*d steps. The
// ramp is geometric, which sounds linear to the ear.
//
// # Thread Safety
//
//   - State is lock-free: the gain reduction is an atomic 64-bit word and the
//     processing flag an atomic bool.
//   - Process, Start and Finish run on the host's real-time audio path. They
//     never lock or log; the only outward call is MainContext.Post.
//   - At most one session goroutine exists at a time.
//   - Playback is never stopped from the session goroutine or the audio path.
//     The stop is posted to the host's MainContext instead.
//
// # Cancellation
//
// A session ends when the threshold is reached, when the State is reset to
// 1.0 (by the posted stop or by Cleanup), or when the Controller is closed.
// Cancellation is only observed between steps.
//
// # Example
//
//	plugin := fade.New(fade.DefaultConfig())
//	if err := plugin.Init(fade.Host{
//	    Main:     loop,
//	    Playback: player,
//	    Settings: store,
//	    Menu:     menu,
//	}); err != nil {
//	    log.Fatal(err)
//	}
//	defer plugin.Cleanup()
package fade
