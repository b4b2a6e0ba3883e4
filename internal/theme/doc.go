// Package theme defines popup colour themes.
//
// Two themes are built in, "light" and "dark". Custom themes are TOML files in
// ~/.config/toasty/themes/ that override any subset of a built-in palette and
// may carry extra CSS for the GTK host. Themes render to GTK CSS and expose
// hex colours for the terminal host.
package theme
