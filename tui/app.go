package tui

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jackchuka/depsweep/internal/duplicates"
	"github.com/jackchuka/depsweep/internal/model"
	"github.com/jackchuka/depsweep/internal/scanner"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanning
)

type View int

const (
	ViewRoots View = iota
	ViewDupes
)

type SortMode int

const (
	SortSize SortMode = iota
	SortPath
)

type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
)

type Toast struct {
	ID        int
	Message   string
	Level     ToastLevel
	CreatedAt time.Time
}

// TableRow is either an install root or a duplicate group, depending on
// the active view.
type TableRow struct {
	Root *model.InstallRoot
	Dup  *model.DuplicateGroup
}

// Path returns the filesystem path the row acts on.
func (r TableRow) Path() string {
	switch {
	case r.Root != nil:
		return r.Root.Path
	case r.Dup != nil && len(r.Dup.Locations) > 0:
		return r.Dup.Locations[0]
	}
	return ""
}

type AnimState struct {
	frame    int
	glowFade map[string]int
}

func newAnimState() AnimState {
	return AnimState{
		glowFade: make(map[string]int),
	}
}

type SummaryData struct {
	TotalRoots    int
	TotalSize     int64
	TotalPackages int
	LargestSize   int64
	Duplicates    int
	Savings       int64
	Errors        int
	Duration      time.Duration
}

type Model struct {
	paths  []string
	opts   scanner.Options
	walker *scanner.Walker

	roots  []model.InstallRoot
	dupes  model.DuplicateReport
	rows   []TableRow
	cursor int

	width, height int
	scrollOffset  int

	phase       Phase
	filterMode  bool
	filterInput textinput.Model
	filterText  string
	view        View
	sortMode    SortMode
	showHelp    bool
	showDetail  bool
	cdPath      string

	summary SummaryData
	anim    AnimState
	toasts  []Toast

	scanCancel context.CancelFunc

	keys        keyMap
	nextToastID int
	animRunning bool
}

func NewModel(walker *scanner.Walker, paths []string, opts scanner.Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "filter projects..."
	ti.CharLimit = 50

	return &Model{
		paths:       paths,
		opts:        opts,
		walker:      walker,
		keys:        newKeyMap(),
		filterInput: ti,
		view:        ViewRoots,
		sortMode:    SortSize,
		showDetail:  true,
		anim:        newAnimState(),
	}
}

func (m *Model) Init() tea.Cmd {
	m.phase = PhaseScanning
	// Send an immediate animTickMsg (no timer) so the first tick doesn't
	// depend on tea.Tick's timer surviving the Init→BatchMsg dispatch path.
	// Subsequent ticks use tea.Tick normally via the animTickMsg handler.
	m.animRunning = true
	return tea.Batch(
		m.runScan(),
		func() tea.Msg { return animTickMsg{} },
	)
}

type scanDoneMsg struct {
	res *scanner.Result
	err error
}
type animTickMsg struct{}
type toastExpiredMsg struct{ id int }

func (m *Model) buildRows() {
	var rows []TableRow
	switch m.view {
	case ViewDupes:
		groups := m.dupes.Packages
		for i := range groups {
			if m.filterText != "" && !containsIgnoreCase(groups[i].Name, m.filterText) {
				continue
			}
			rows = append(rows, TableRow{Dup: &groups[i]})
		}
	default:
		var filtered []model.InstallRoot
		for _, r := range m.roots {
			if m.filterText != "" &&
				!containsIgnoreCase(r.DisplayName(), m.filterText) &&
				!containsIgnoreCase(r.Path, m.filterText) {
				continue
			}
			filtered = append(filtered, r)
		}

		switch m.sortMode {
		case SortPath:
			model.SortByPath(filtered)
		default:
			model.SortBySize(filtered)
		}

		rows = make([]TableRow, len(filtered))
		for i := range filtered {
			rows[i] = TableRow{Root: &filtered[i]}
		}
	}

	m.rows = rows

	// Clamp cursor
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) refresh() {
	m.computeSummary()
	m.buildRows()
}

func (m *Model) computeSummary() {
	s := SummaryData{
		Duplicates: m.dupes.TotalDuplicates,
		Savings:    m.dupes.PotentialSavings,
		Errors:     m.summary.Errors,
		Duration:   m.summary.Duration,
	}
	for _, r := range m.roots {
		s.TotalRoots++
		s.TotalSize += r.Size
		s.TotalPackages += r.PackageCount
		s.LargestSize = max(s.LargestSize, r.Size)
	}
	m.summary = s
}

func (m *Model) selectedRow() (TableRow, bool) {
	if len(m.rows) == 0 || m.cursor >= len(m.rows) {
		return TableRow{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) addToast(msg string, level ToastLevel) tea.Cmd {
	id := m.nextToastID
	m.nextToastID++
	t := Toast{
		ID:        id,
		Message:   msg,
		Level:     level,
		CreatedAt: time.Now(),
	}
	m.toasts = append(m.toasts, t)
	return tea.Tick(3*time.Second, func(_ time.Time) tea.Msg {
		return toastExpiredMsg{id}
	})
}

func (m *Model) updateAnimState() {
	m.anim.frame++

	// Step the border flash every 3 frames (300ms) for snappy blink
	if m.anim.frame%3 == 0 {
		for path, step := range m.anim.glowFade {
			if step >= len(glowBorderColors)-1 {
				delete(m.anim.glowFade, path)
			} else {
				m.anim.glowFade[path] = step + 1
			}
		}
	}
}

func (m *Model) animTick() tea.Cmd {
	m.animRunning = true
	return tea.Tick(100*time.Millisecond, func(_ time.Time) tea.Msg {
		return animTickMsg{}
	})
}

func (m *Model) hasActiveAnimations() bool {
	return len(m.anim.glowFade) > 0 || m.phase != PhaseIdle
}

func (m *Model) ensureAnimTick() tea.Cmd {
	if m.animRunning {
		return nil
	}
	return m.animTick()
}

func (m *Model) runScan() tea.Cmd {
	if m.scanCancel != nil {
		m.scanCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.scanCancel = cancel

	return func() tea.Msg {
		res, err := m.walker.ScanAll(ctx, m.paths, m.opts)
		return scanDoneMsg{res: res, err: err}
	}
}

// applyScan installs a scan result and flashes roots that are new or whose
// size changed since the previous scan.
func (m *Model) applyScan(res *scanner.Result) {
	prev := make(map[string]int64, len(m.roots))
	for _, r := range m.roots {
		prev[r.Path] = r.Size
	}
	first := len(m.roots) == 0

	m.roots = res.Roots
	m.dupes = duplicates.Analyze(res.Roots)
	m.summary.Errors = len(res.Errors)
	m.summary.Duration = res.Duration

	if !first {
		for _, r := range m.roots {
			if size, ok := prev[r.Path]; !ok || size != r.Size {
				m.anim.glowFade[r.Path] = 0
			}
		}
	}
	m.refresh()
}

func (m *Model) openShell(path string) tea.Cmd {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}
	cmd := exec.Command(shell)
	cmd.Dir = path
	return tea.ExecProcess(cmd, func(err error) tea.Msg { return nil })
}

func (m *Model) openFinder(path string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", path)
		case "windows":
			cmd = exec.Command("explorer", path)
		default:
			cmd = exec.Command("xdg-open", path)
		}
		_ = cmd.Run()
		return nil
	}
}

func (m *Model) copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("pbcopy")
		case "windows":
			cmd = exec.Command("clip")
		default:
			// Try xclip first, fall back to xsel
			if _, err := exec.LookPath("xclip"); err == nil {
				cmd = exec.Command("xclip", "-selection", "clipboard")
			} else {
				cmd = exec.Command("xsel", "--clipboard", "--input")
			}
		}
		cmd.Stdin = strings.NewReader(text)
		_ = cmd.Run()
		return nil
	}
}

// topPackages returns up to n packages of r, largest first.
func topPackages(r *model.InstallRoot, n int) []model.Package {
	pkgs := make([]model.Package, len(r.Packages))
	copy(pkgs, r.Packages)
	sort.Slice(pkgs, func(i, j int) bool {
		if pkgs[i].Size != pkgs[j].Size {
			return pkgs[i].Size > pkgs[j].Size
		}
		return pkgs[i].Name < pkgs[j].Name
	})
	if n > 0 && len(pkgs) > n {
		pkgs = pkgs[:n]
	}
	return pkgs
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Run starts the interactive view over paths. On exit via enter it prints
// the selected project directory so shells can cd into it.
func Run(walker *scanner.Walker, paths []string, opts scanner.Options) error {
	m := NewModel(walker, paths, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()

	// Cleanup
	if m.scanCancel != nil {
		m.scanCancel()
	}

	if err != nil {
		return err
	}

	// cd action
	if mdl, ok := result.(*Model); ok && mdl.cdPath != "" {
		fmt.Println(mdl.cdPath)
	}

	return nil
}
