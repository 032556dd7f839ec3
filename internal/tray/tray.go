// Package tray provides the system tray interface for Mudra.
package tray

import (
	"sync"

	"github.com/ayusman/mudra/internal/events"
	"github.com/getlantern/systray"
)

// Toggle identifies a task that can be switched from the tray.
type Toggle int

const (
	ToggleTracking Toggle = iota
	ToggleVoice
)

func (t Toggle) String() string {
	if t == ToggleVoice {
		return "Voice Control"
	}
	return "Hand Tracking"
}

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(which Toggle, enabled bool) error
	onSettings func()
	onQuit     func()
	enabled    [2]bool
	labels     labels
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle   [2]*systray.MenuItem
	menuMode     *systray.MenuItem
	menuVoice    *systray.MenuItem
	menuActivity *systray.MenuItem
}

// labels holds the text of the status lines.
type labels struct {
	mode     string
	voice    string
	activity string
}

// New creates a new Tray with both tasks shown as enabled.
func New() *Tray {
	return &Tray{
		enabled: [2]bool{true, true},
		labels: labels{
			mode:     "Mode: Navigation",
			voice:    "Voice: inactive",
			activity: "Last: none",
		},
	}
}

// OnToggle sets the callback run when a task is switched from the menu.
// If it returns an error the menu keeps the previous state.
func (t *Tray) OnToggle(fn func(which Toggle, enabled bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra Hand and Voice Control")

	t.mu.Lock()
	t.menuToggle[ToggleTracking] = systray.AddMenuItem(toggleTitle(ToggleTracking, t.enabled[ToggleTracking]), "Start or stop hand tracking")
	t.menuToggle[ToggleVoice] = systray.AddMenuItem(toggleTitle(ToggleVoice, t.enabled[ToggleVoice]), "Start or stop voice control")
	systray.AddSeparator()

	t.menuMode = systray.AddMenuItem(t.labels.mode, "Current gesture mode")
	t.menuMode.Disable()
	t.menuVoice = systray.AddMenuItem(t.labels.voice, "Voice recognition status")
	t.menuVoice.Disable()
	t.menuActivity = systray.AddMenuItem(t.labels.activity, "Most recent activity")
	t.menuActivity.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle[ToggleTracking].ClickedCh:
				t.handleToggle(ToggleTracking)
			case <-t.menuToggle[ToggleVoice].ClickedCh:
				t.handleToggle(ToggleVoice)
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle handles a toggle menu item click.
func (t *Tray) handleToggle(which Toggle) {
	t.mu.RLock()
	enabled := !t.enabled[which]
	callback := t.onToggle
	t.mu.RUnlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		if err := callback(which, enabled); err != nil {
			t.SetActivity(which.String() + " failed: " + err.Error())
			return
		}
	}
	t.SetEnabled(which, enabled)
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetEnabled updates the shown state of a task.
func (t *Tray) SetEnabled(which Toggle, enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled[which] = enabled
	if item := t.menuToggle[which]; item != nil {
		item.SetTitle(toggleTitle(which, enabled))
	}
}

// IsEnabled returns the shown state of a task.
func (t *Tray) IsEnabled(which Toggle) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled[which]
}

// SetActivity updates the last activity line.
func (t *Tray) SetActivity(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.labels.activity = "Last: " + text
	setTitle(t.menuActivity, t.labels.activity)
}

// Follow updates the menu from events until sub is closed.
func (t *Tray) Follow(sub *events.Subscription) {
	for e := range sub.C {
		t.Apply(e)
	}
}

// Apply updates the menu for one event.
func (t *Tray) Apply(e events.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Type {
	case events.ModeChanged:
		t.labels.mode = "Mode: " + e.Value
		setTitle(t.menuMode, t.labels.mode)
	case events.VoiceStatus:
		t.labels.voice = "Voice: " + e.Value
		setTitle(t.menuVoice, t.labels.voice)
	case events.TrackingError:
		t.setEnabledLocked(ToggleTracking, false)
	case events.TrackingStatus:
		t.setEnabledLocked(ToggleTracking, e.Value == "started")
	}

	if e.Type != events.VoiceStatus && e.Message != "" {
		t.labels.activity = "Last: " + e.Message
		setTitle(t.menuActivity, t.labels.activity)
	}
}

func (t *Tray) setEnabledLocked(which Toggle, enabled bool) {
	t.enabled[which] = enabled
	setTitle(t.menuToggle[which], toggleTitle(which, enabled))
}

func toggleTitle(which Toggle, enabled bool) string {
	if enabled {
		return "● " + which.String()
	}
	return "○ " + which.String()
}

func setTitle(item *systray.MenuItem, title string) {
	if item != nil {
		item.SetTitle(title)
	}
}
