package fade

import "errors"

// Sentinel errors for fade operations.
// These errors enable reliable error classification using errors.Is().

// Trigger errors. The menu action treats ErrNotProcessing and ErrFadeActive
// as silent no-ops.
var (
	// ErrNotProcessing indicates the audio pipeline is not feeding buffers
	// through the effect.
	ErrNotProcessing = errors.New("effect is not processing audio")

	// ErrFadeActive indicates a fade session is already in progress.
	ErrFadeActive = errors.New("fade already active")

	// ErrTaskUnavailable indicates the fading task could not be started.
	ErrTaskUnavailable = errors.New("could not start fading task")

	// ErrControllerClosed indicates the controller has been shut down.
	ErrControllerClosed = errors.New("controller closed")
)

// Lifecycle and configuration errors.
var (
	// ErrMissingHost indicates a required host collaborator was nil.
	ErrMissingHost = errors.New("missing host collaborator")

	// ErrAlreadyInitialized indicates Init was called twice without Cleanup.
	ErrAlreadyInitialized = errors.New("plugin already initialized")

	// ErrNotInitialized indicates the plugin has not been initialized.
	ErrNotInitialized = errors.New("plugin not initialized")

	// ErrInvalidDuration indicates a fade duration that is not a finite
	// positive number.
	ErrInvalidDuration = errors.New("invalid fade duration")
)
