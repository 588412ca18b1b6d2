package main

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"

	"github.com/zboralski/ps5kitchen/internal/report"
)

// progressModel drives a live terminal progress bar for `run --watch`,
// fed by pipeline.Options.Progress as each file finishes.
type progressModel struct {
	mu       sync.Mutex
	bar      progress.Model
	done     int
	total    int
	lastFile string

	program *tea.Program
}

func newProgressModel() *progressModel {
	return &progressModel{bar: progress.New(progress.WithDefaultGradient())}
}

type fileDoneMsg struct {
	fr    report.FileReport
	done  int
	total int
}

func (m *progressModel) onFileDone(fr report.FileReport, done, total int) {
	m.mu.Lock()
	m.done, m.total, m.lastFile = done, total, fr.Path
	m.mu.Unlock()
	if m.program != nil {
		m.program.Send(fileDoneMsg{fr: fr, done: done, total: total})
	}
}

func (m *progressModel) start() {
	m.program = tea.NewProgram(m)
	go func() {
		_, _ = m.program.Run()
	}()
}

func (m *progressModel) stop() {
	if m.program != nil {
		m.program.Quit()
	}
}

func (m *progressModel) Init() tea.Cmd { return nil }

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fileDoneMsg:
		if msg.done >= msg.total {
			return m, tea.Quit
		}
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *progressModel) View() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var percent float64
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	return fmt.Sprintf("%s\n%d/%d  %s\n", m.bar.ViewAs(percent), m.done, m.total, m.lastFile)
}
