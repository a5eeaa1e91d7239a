package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/NamanBalaji/modsync/internal/engine"
	"github.com/NamanBalaji/modsync/internal/progress"
)

const listenerID = "tui"

// Run shows the progress of a run started with eng.Start until result
// delivers its outcome, and returns that outcome.
func Run(eng *engine.Engine, title string, result <-chan error) error {
	m := NewModel(newEngineActions(eng), title)
	p := tea.NewProgram(m)

	updates := make(chan progress.Snapshot, 16)
	eng.Monitor().RegisterListener(listenerID, updates)
	defer eng.Monitor().UnregisterListener(listenerID)

	stop := make(chan struct{})
	defer close(stop)

	go func() {
		for {
			select {
			case <-stop:
				return
			case s := <-updates:
				p.Send(snapshotMsg(s))
			}
		}
	}()

	go func() {
		p.Send(resultMsg{err: <-result})
	}()

	if _, err := p.Run(); err != nil {
		eng.Cancel()
		eng.Wait()

		return err
	}

	return m.Err()
}

type engineActions struct {
	Cancel   func()
	Progress func() progress.Snapshot
}

func newEngineActions(e *engine.Engine) engineActions {
	return engineActions{
		Cancel:   e.Cancel,
		Progress: e.Progress,
	}
}
