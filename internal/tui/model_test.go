package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestBreathingMessageStartsCountdown(t *testing.T) {
	m := NewModel(nil, "reddit.com", false)

	updated, cmd := m.Update(breathingMsg{duration: 6 * time.Second})
	model := updated.(Model)
	if model.screen != screenBreathing {
		t.Fatalf("expected breathing screen, got %d", model.screen)
	}
	if model.breathRemaining != 6*time.Second {
		t.Fatalf("expected 6s remaining, got %v", model.breathRemaining)
	}
	if cmd == nil {
		t.Fatal("expected a countdown tick command")
	}

	updated, _ = model.Update(breathTickMsg(time.Now()))
	model = updated.(Model)
	if model.breathRemaining != 5*time.Second {
		t.Fatalf("expected 5s remaining after tick, got %v", model.breathRemaining)
	}
}

func TestIntentionMessageResetsInputs(t *testing.T) {
	m := NewModel(nil, "reddit.com", true)
	m.intentionInput.SetValue("stale")
	m.passwordErr = true

	updated, _ := m.Update(intentionMsg{})
	model := updated.(Model)
	if model.screen != screenIntention {
		t.Fatalf("expected intention screen, got %d", model.screen)
	}
	if model.intentionInput.Value() != "" {
		t.Fatalf("expected cleared intention input, got %q", model.intentionInput.Value())
	}
	if model.passwordErr {
		t.Fatal("expected cleared password error")
	}
	if !model.intentionInput.Focused() || model.passwordInput.Focused() {
		t.Fatal("intention input must start focused")
	}
}

func TestPasswordErrorShownInline(t *testing.T) {
	m := NewModel(nil, "reddit.com", true)
	updated, _ := m.Update(intentionMsg{})
	model := updated.(Model)

	updated, _ = model.Update(passwordErrMsg{})
	model = updated.(Model)
	if !model.passwordErr {
		t.Fatal("expected password error flag")
	}
	if !strings.Contains(model.View(), "Incorrect password") {
		t.Fatal("expected inline password error in view")
	}
	if model.screen != screenIntention {
		t.Fatalf("error must keep the intention screen, got %d", model.screen)
	}
}

func TestUnlockedShowsElapsedTime(t *testing.T) {
	m := NewModel(nil, "reddit.com", false)

	updated, _ := m.Update(unlockedMsg{})
	model := updated.(Model)
	updated, _ = model.Update(timerMsg{total: 125})
	model = updated.(Model)

	if model.screen != screenUnlocked {
		t.Fatalf("expected unlocked screen, got %d", model.screen)
	}
	if !strings.Contains(model.View(), "2m 5s") {
		t.Fatalf("expected formatted elapsed time in view, got %q", model.View())
	}
}

func TestDismissedEntersDoneCooldown(t *testing.T) {
	m := NewModel(nil, "reddit.com", false)

	updated, cmd := m.Update(dismissedMsg{})
	model := updated.(Model)
	if model.screen != screenDone {
		t.Fatalf("expected done screen, got %d", model.screen)
	}
	if cmd == nil {
		t.Fatal("expected cooldown quit command")
	}
	if !strings.Contains(model.View(), "Nice turnaround") {
		t.Fatal("expected the done message in view")
	}
}

func TestWindowSizeCentersFrame(t *testing.T) {
	m := NewModel(nil, "reddit.com", false)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model := updated.(Model)
	if model.width != 80 || model.height != 24 {
		t.Fatalf("unexpected dimensions %dx%d", model.width, model.height)
	}
}
