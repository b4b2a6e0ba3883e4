package display

import (
	"fmt"
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/toasty/internal/toast"
)

// Events receives pointer input on popups. *toast.Registry implements it.
type Events interface {
	Click(id string, x, y int) error
	Pointer(id string, x, y int) error
	Leave(id string) error
}

var _ Events = (*toast.Registry)(nil)

// Host creates layer-shell popup windows.
type Host struct {
	app      *gtk.Application
	monitors *Monitors
	themes   *ThemeLoader
	events   Events
	logger   *slog.Logger

	closeSize int // Side of the close button square
}

// NewHost creates a host for app. themes may be nil.
func NewHost(app *gtk.Application, monitors *Monitors, themes *ThemeLoader, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		app:      app,
		monitors: monitors,
		themes:   themes,
		logger:   logger,

		closeSize: toast.DefaultLayout().CloseRegion,
	}
}

// SetCloseRegion sets the size of the close button drawn on new popups.
func (h *Host) SetCloseRegion(size int) {
	h.closeSize = size
}

// SetEvents sets the receiver of popup pointer input.
func (h *Host) SetEvents(events Events) {
	h.events = events
}

// NewSurface implements toast.SurfaceFactory. An image that cannot be
// loaded is reported with toast.ErrImageLoad alongside a usable surface.
func (h *Host) NewSurface(p *toast.Popup) (toast.Surface, error) {
	key := p.Key()
	mon, bounds, ok := h.monitors.monitor(key.Screen)
	if !ok {
		return nil, &toast.HostError{Message: "unknown screen " + key.Screen, Cause: toast.ErrNoScreen}
	}

	w := &window{
		host:   h,
		id:     p.ID(),
		screen: key.Screen,
		origin: toast.Point{X: bounds.X, Y: bounds.Y},
	}

	w.win = gtk.NewWindow()
	w.win.SetApplication(h.app)
	w.win.SetDecorated(false)
	w.win.SetResizable(false)

	layershell.InitForWindow(w.win)
	layershell.SetLayer(w.win, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(w.win, 0) // Don't reserve space
	layershell.SetKeyboardMode(w.win, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(w.win, "toasty")
	layershell.SetMonitor(w.win, mon)

	// Popup coordinates are absolute, so every popup hangs off the
	// top-left corner and moves by margin.
	layershell.SetAnchor(w.win, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(w.win, layershell.LayerShellEdgeLeft, true)

	imageErr := w.build(p.Content(), h.themeClass(p.Content().Theme))
	h.connectSignals(w)

	return w, imageErr
}

func (h *Host) themeClass(name string) string {
	if h.themes == nil {
		return ""
	}
	return h.themes.Ensure(name)
}

// connectSignals routes pointer input on the window to the registry.
func (h *Host) connectSignals(w *window) {
	motion := gtk.NewEventControllerMotion()
	motion.ConnectEnter(func(x, y float64) {
		h.monitors.pointerEntered(w.screen)
		h.pointer(w.id, x, y)
	})
	motion.ConnectMotion(func(x, y float64) {
		h.pointer(w.id, x, y)
	})
	motion.ConnectLeave(func() {
		if h.events == nil {
			return
		}
		if err := h.events.Leave(w.id); err != nil {
			h.logger.Debug("leave on closed popup", "popup", w.id, "error", err)
		}
	})
	w.win.AddController(motion)

	click := gtk.NewGestureClick()
	click.SetButton(1) // Primary only
	click.ConnectReleased(func(nPress int, x, y float64) {
		if h.events == nil {
			return
		}
		if err := h.events.Click(w.id, int(x), int(y)); err != nil {
			h.logger.Debug("click on closed popup", "popup", w.id, "error", err)
		}
	})
	w.win.AddController(click)
}

func (h *Host) pointer(id string, x, y float64) {
	if h.events == nil {
		return
	}
	if err := h.events.Pointer(id, int(x), int(y)); err != nil {
		h.logger.Debug("pointer on closed popup", "popup", id, "error", err)
	}
}

// window is one popup surface.
type window struct {
	host   *Host
	id     string
	screen string
	origin toast.Point // Top-left of the screen the popup lives on

	win      *gtk.Window
	root     *gtk.Overlay
	title    *gtk.Label
	text     *gtk.Label
	closeLbl *gtk.Label
	progress *gtk.ProgressBar

	bounds  toast.Rect
	painted bool
	last    toast.Frame
}

// build creates the widget tree:
//
//	overlay.toast
//	  box (vertical)
//	    box (horizontal): icon, box (vertical): title, text
//	    progressbar
//	  label.toast-close (top-right)
func (w *window) build(c toast.Content, themeClass string) error {
	w.root = gtk.NewOverlay()
	w.root.AddCSSClass("toast")
	w.root.AddCSSClass("kind-" + c.Kind.String())
	if themeClass != "" {
		w.root.AddCSSClass(themeClass)
	}

	content := gtk.NewBox(gtk.OrientationVertical, 4)
	row := gtk.NewBox(gtk.OrientationHorizontal, 0)
	row.SetVExpand(true)

	var imageErr error
	switch {
	case c.Image != "":
		texture, err := gdk.NewTextureFromFilename(c.Image)
		if err != nil {
			imageErr = &toast.HostError{
				Message: "image " + c.Image,
				Cause:   fmt.Errorf("%w: %v", toast.ErrImageLoad, err),
			}
			break
		}
		img := gtk.NewImageFromPaintable(texture)
		img.AddCSSClass("toast-icon")
		img.SetPixelSize(48)
		row.Append(img)
	case c.Kind.IconName() != "":
		icon := gtk.NewImageFromIconName(c.Kind.IconName())
		icon.AddCSSClass("toast-icon")
		icon.SetPixelSize(32)
		row.Append(icon)
	}

	labels := gtk.NewBox(gtk.OrientationVertical, 2)
	labels.SetHExpand(true)

	w.title = gtk.NewLabel(c.Title)
	w.title.AddCSSClass("toast-title")
	w.title.SetXAlign(0)
	w.title.SetEllipsize(3) // PANGO_ELLIPSIZE_END
	labels.Append(w.title)

	w.text = gtk.NewLabel(c.Summary())
	w.text.AddCSSClass("toast-text")
	w.text.SetXAlign(0)
	w.text.SetWrap(true)
	w.text.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
	w.text.SetLines(2)
	w.text.SetEllipsize(3)
	labels.Append(w.text)

	row.Append(labels)
	content.Append(row)

	w.progress = gtk.NewProgressBar()
	w.progress.SetVisible(false)
	content.Append(w.progress)

	w.root.SetChild(content)

	w.closeLbl = gtk.NewLabel("×")
	w.closeLbl.AddCSSClass("toast-close")
	w.closeLbl.SetHAlign(gtk.AlignEnd)
	w.closeLbl.SetVAlign(gtk.AlignStart)
	w.root.AddOverlay(w.closeLbl)

	w.win.SetChild(w.root)
	return imageErr
}

func (w *window) Move(x, y int) {
	w.bounds.X, w.bounds.Y = x, y
	layershell.SetMargin(w.win, layershell.LayerShellEdgeLeft, x-w.origin.X)
	layershell.SetMargin(w.win, layershell.LayerShellEdgeTop, y-w.origin.Y)
}

func (w *window) Resize(width, height int) {
	w.bounds.Width, w.bounds.Height = width, height
	w.win.SetDefaultSize(width, height)
	w.root.SetSizeRequest(width, height)
	w.closeLbl.SetSizeRequest(w.host.closeSize, w.host.closeSize)
}

func (w *window) SetVisible(visible bool) {
	if visible {
		w.win.Present()
		return
	}
	w.win.SetVisible(false)
}

// Repaint updates only the widgets whose frame values changed.
func (w *window) Repaint(f toast.Frame) {
	first := !w.painted
	w.painted = true

	if first || f.Title != w.last.Title {
		w.title.SetText(f.Title)
	}
	if first || f.Text != w.last.Text {
		w.text.SetText(f.Text)
	}
	if first || f.Countdown != w.last.Countdown {
		w.progress.SetVisible(f.Countdown)
	}
	if f.Countdown && (first || f.Progress != w.last.Progress) && f.Width > 0 {
		w.progress.SetFraction(float64(f.Progress) / float64(f.Width))
	}
	if first || f.HideCloseButton != w.last.HideCloseButton {
		w.closeLbl.SetVisible(!f.HideCloseButton)
	}
	if first || f.CloseHover != w.last.CloseHover {
		if f.CloseHover {
			w.closeLbl.AddCSSClass("hover")
		} else {
			w.closeLbl.RemoveCSSClass("hover")
		}
	}
	w.last = f
}

func (w *window) Bounds() toast.Rect {
	return w.bounds
}

// Release destroys the window once the current signal handler returns,
// since a click on the popup itself may be what closed it.
func (w *window) Release() {
	win := w.win
	coreglib.IdleAdd(func() {
		win.Destroy()
	})
}
