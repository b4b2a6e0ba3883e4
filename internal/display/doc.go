// Package display hosts toast popups as GTK4 layer-shell windows.
//
// Host creates one undecorated window per popup and positions it with
// layer-shell margins, so popup coordinates stay in screen space. Driver
// ticks the registry from the GLib main loop and Monitors reports output
// geometry. Every type here must be used from the GTK main thread.
package display
