package handlers

// HandlerBundle groups the assembled handlers for route registration.
type HandlerBundle struct {
	Voice *VoiceHandler
	Media *MediaHandler

	// AudioDir is the local directory of synthesized replies served at
	// /audio.
	AudioDir string
}
