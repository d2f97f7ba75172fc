// Package monitor is the live terminal view: it re-aggregates the
// watched export files whenever they change and re-renders the summary.
package monitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/hyunseo/orgusage/internal/store"
	"github.com/hyunseo/orgusage/internal/types"
)

type Options struct {
	UserFile     string
	ProjectFile  string
	IdentityFile string
	NoColor      bool
	Interval     time.Duration
}

func (o Options) files() []string {
	var files []string
	for _, f := range []string{o.UserFile, o.ProjectFile, o.IdentityFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

type Monitor struct {
	options Options
}

func New(opts Options) *Monitor {
	if opts.Interval == 0 {
		opts.Interval = 30 * time.Second
	}
	return &Monitor{options: opts}
}

func (m *Monitor) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch parent directories: editors and exporters replace files
	// rather than writing in place.
	dirs := map[string]bool{}
	for _, f := range m.options.files() {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	p := tea.NewProgram(
		initialModel(m.options, watcher),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err = p.Run()
	return err
}

type model struct {
	options    Options
	watcher    *fsnotify.Watcher
	summary    *types.AggregatedSummary
	lastUpdate time.Time
	err        error
}

type (
	tickMsg        time.Time
	fileChangedMsg string
	reloadMsg      struct {
		summary *types.AggregatedSummary
		err     error
	}
)

func initialModel(opts Options, watcher *fsnotify.Watcher) model {
	return model{
		options:    opts,
		watcher:    watcher,
		lastUpdate: time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.options.Interval),
		m.waitForChange(),
		m.reload(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.reload()
		}

	case tickMsg:
		return m, tea.Batch(tickCmd(m.options.Interval), m.reload())

	case fileChangedMsg:
		m.lastUpdate = time.Now()
		return m, tea.Batch(m.waitForChange(), m.reload())

	case reloadMsg:
		m.summary = msg.summary
		m.err = msg.err
		m.lastUpdate = time.Now()
	}

	return m, nil
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress 'q' to quit, 'r' to retry", m.err)
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)
	summaryStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(1).
		MarginBottom(1)

	if m.options.NoColor {
		headerStyle = lipgloss.NewStyle()
		summaryStyle = lipgloss.NewStyle()
	}

	content := headerStyle.Render("Organization Usage Monitor")
	content += "\n\n"

	if m.summary == nil {
		content += "Waiting for usage data...\n"
		content += "\n\nPress 'q' to quit, 'r' to reload"
		return content
	}

	summary := fmt.Sprintf(
		"Total Cost: $%.2f\nTotal Requests: %d\nActive Users: %d\nLast Update: %s",
		m.summary.TotalCost,
		m.summary.TotalRequests,
		m.summary.ActiveUsers,
		m.lastUpdate.Format("15:04:05"),
	)
	content += summaryStyle.Render(summary)
	content += "\n\n"

	if len(m.summary.ByModel) > 0 {
		content += "By Model:\n"
		for i, mu := range m.summary.ByModel {
			if i >= 5 {
				break
			}
			content += fmt.Sprintf("%s - $%.4f (%d requests)\n", mu.Model, mu.Cost, mu.Requests)
		}
	}

	content += "\n\nPress 'q' to quit, 'r' to reload"
	return content
}

// waitForChange blocks on the watcher until one of the watched files is
// written or replaced.
func (m model) waitForChange() tea.Cmd {
	watched := map[string]bool{}
	for _, f := range m.options.files() {
		watched[filepath.Base(f)] = true
	}

	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-m.watcher.Events:
				if !ok {
					return nil
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if watched[filepath.Base(ev.Name)] {
					return fileChangedMsg(ev.Name)
				}
			case _, ok := <-m.watcher.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (m model) reload() tea.Cmd {
	opts := m.options
	return func() tea.Msg {
		st := store.New(nil)
		for _, path := range []string{opts.IdentityFile, opts.UserFile, opts.ProjectFile} {
			if path == "" {
				continue
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return reloadMsg{err: err}
			}
			if _, err := st.LoadUpload(raw); err != nil {
				return reloadMsg{err: fmt.Errorf("%s: %w", path, err)}
			}
		}
		return reloadMsg{summary: st.Summary()}
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
