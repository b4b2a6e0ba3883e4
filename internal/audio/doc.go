// Package audio plays sound cues for popups.
// It uses the beep library to decode WAV, OGG and MP3 files and maps cue
// names ("show", "shake" and each popup kind) to configured files.
package audio
