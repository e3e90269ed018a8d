// Package host is a small reference media player that loads the FadeOut
// plugin.
//
// It provides the collaborators the plugin expects from a real player:
//
//   - Menu: user-triggerable actions registered by plugins
//   - EffectChain: the effect hooks run by the audio pipeline
//   - Player: a playlist of WAV files decoded, passed through the effect
//     chain and written to an Output
//   - Output: the audio sink, backed by oto unless built with the headless tag
//
// The main/control context is provided by the mainloop package. Player.Stop
// and menu activations must run there.
package host
