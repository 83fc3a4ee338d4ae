package notify

import "testing"

func TestDefaultPreferences(t *testing.T) {
	prefs := DefaultPreferences()
	if prefs.Title != "GhostCanvas" {
		t.Errorf("Title = %q", prefs.Title)
	}
	for _, e := range []Event{EventCapture, EventResponse} {
		if prefs.Events[e].Template == "" {
			t.Errorf("missing template for event %q", e)
		}
	}
}

func TestLoadPreferencesEnvOverride(t *testing.T) {
	t.Setenv("GHOSTCANVAS_NOTIFY_TITLE", "Canvas")
	t.Setenv("GHOSTCANVAS_NOTIFY_RESPONSE_TEXT", "Answer from %s")

	prefs := LoadPreferences()
	if prefs.Title != "Canvas" {
		t.Errorf("Title = %q", prefs.Title)
	}
	if got := prefs.Events[EventResponse].Template; got != "Answer from %s" {
		t.Errorf("response template = %q", got)
	}
	if got := prefs.Events[EventCapture].Template; got != "Captured %s" {
		t.Errorf("capture template = %q", got)
	}
}

func TestDisabledEventsDoNotDispatch(t *testing.T) {
	n := New(DefaultPreferences())
	// nothing enabled: these must be no-ops and must not panic
	n.Capture("screen", nil)
	n.Response("gemini")

	var nilNotifier *Notifier
	nilNotifier.Response("gemini")
}
