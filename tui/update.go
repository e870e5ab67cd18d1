package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case animTickMsg:
		m.updateAnimState()
		if m.hasActiveAnimations() {
			return m, m.animTick()
		}
		m.animRunning = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case scanDoneMsg:
		// A rescan cancels the scan in flight; its result is stale.
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		m.phase = PhaseIdle
		if msg.err != nil {
			return m, m.addToast("Scan failed: "+msg.err.Error(), ToastError)
		}
		m.applyScan(msg.res)

		toastMsg := fmt.Sprintf("Found %d install roots, %s", len(msg.res.Roots), humanize.Bytes(uint64(max(m.summary.TotalSize, 0))))
		level := ToastSuccess
		if n := len(msg.res.Errors); n > 0 {
			toastMsg += fmt.Sprintf(" (%d errors)", n)
			level = ToastError
		}
		return m, tea.Batch(m.addToast(toastMsg, level), m.ensureAnimTick())

	case toastExpiredMsg:
		for i, t := range m.toasts {
			if t.ID == msg.id {
				m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
				break
			}
		}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay: any key closes
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// Filter mode
	if m.filterMode {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.filterMode = false
			m.filterInput.Reset()
			m.filterText = ""
			m.buildRows()
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			m.filterMode = false
			m.filterText = m.filterInput.Value()
			m.buildRows()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.filterText = m.filterInput.Value()
			m.buildRows()
			return m, cmd
		}
	}

	// Normal mode
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	// Navigation
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0

	case key.Matches(msg, m.keys.Bottom):
		if len(m.rows) > 0 {
			m.cursor = len(m.rows) - 1
		}

	case key.Matches(msg, m.keys.HalfDown):
		m.cursor += m.visibleRows() / 2
		if m.cursor >= len(m.rows) {
			m.cursor = len(m.rows) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.HalfUp):
		m.cursor -= m.visibleRows() / 2
		if m.cursor < 0 {
			m.cursor = 0
		}

	// Filter
	case key.Matches(msg, m.keys.Filter):
		m.filterMode = true
		m.filterInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Escape):
		m.filterText = ""
		m.filterInput.Reset()
		m.buildRows()

	// Actions
	case key.Matches(msg, m.keys.Enter):
		if row, ok := m.selectedRow(); ok && row.Root != nil {
			m.cdPath = row.Root.ProjectPath
			return m, tea.Quit
		}

	case key.Matches(msg, m.keys.Rescan):
		m.walker.Cache().Clear()
		m.phase = PhaseScanning
		return m, tea.Batch(m.runScan(), m.ensureAnimTick())

	case key.Matches(msg, m.keys.Open):
		if row, ok := m.selectedRow(); ok {
			return m, m.openFinder(row.Path())
		}

	case key.Matches(msg, m.keys.Shell):
		if row, ok := m.selectedRow(); ok {
			return m, m.openShell(row.Path())
		}

	case key.Matches(msg, m.keys.CopyPath):
		if row, ok := m.selectedRow(); ok {
			return m, tea.Batch(
				m.copyToClipboard(row.Path()),
				m.addToast("Copied path", ToastInfo),
			)
		}

	// Views
	case key.Matches(msg, m.keys.Sort):
		if m.sortMode == SortSize {
			m.sortMode = SortPath
		} else {
			m.sortMode = SortSize
		}
		m.buildRows()

	case key.Matches(msg, m.keys.Dupes):
		if m.view == ViewDupes {
			m.view = ViewRoots
		} else {
			m.view = ViewDupes
		}
		m.cursor = 0
		m.scrollOffset = 0
		m.buildRows()

	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	}

	return m, nil
}

func (m *Model) visibleRows() int {
	// header(2) + summary(5) + table header(1) + footer(2) = 10
	avail := m.height - 10
	if avail < 1 {
		avail = 1
	}
	return avail
}
