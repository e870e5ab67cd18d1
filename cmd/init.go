package cmd

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jackchuka/depsweep/internal/config"
	"github.com/jackchuka/depsweep/internal/glob"
	"github.com/jackchuka/depsweep/internal/scanner"
)

var (
	initForce    bool
	initDefaults bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter depsweep config",
	Long: `Write a starter config file. By default an interactive wizard asks for
the directories to scan, extra exclude patterns and the walk depth. An
existing config is left alone unless --force is given, in which case it is
renamed to a timestamped backup first.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "replace an existing config, keeping a backup")
	initCmd.Flags().BoolVar(&initDefaults, "defaults", false, "write the default config without prompting")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := cfgFile
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	out := cmd.OutOrStdout()

	if initDefaults {
		backup, err := config.WriteStarter(config.NewConfig(), configPath, initForce)
		if err != nil {
			return err
		}
		if backup != "" {
			fmt.Fprintln(out, styleInitDim.Render("Previous config moved to "+backup))
		}
		fmt.Fprintln(out, styleInitSuccess.Render("Config saved to "+configPath))
		return nil
	}

	_, err := os.Stat(configPath)
	exists := err == nil
	if exists && !initForce {
		return fmt.Errorf("%w: %s (use --force to replace it)", config.ErrConfigExists, configPath)
	}

	result, err := tea.NewProgram(newInitModel(configPath, exists, initForce)).Run()
	if err != nil {
		return err
	}
	if final, ok := result.(*initModel); ok {
		return final.err
	}
	return nil
}

type wizardStep int

const (
	stepIntro   wizardStep = iota
	stepReplace            // asked only when a config exists
	stepScanPaths
	stepExcludes
	stepDepth
	stepReview
	stepDone
)

var (
	styleInitTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("73"))
	styleInitSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("71"))
	styleInitWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	styleInitDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// entryList is the state of a step that collects several values.
type entryList struct {
	values []string
	notes  map[int]string // value index → note shown under it
}

func (l *entryList) add(v, note string) {
	l.values = append(l.values, v)
	if note == "" {
		return
	}
	if l.notes == nil {
		l.notes = make(map[int]string)
	}
	l.notes[len(l.values)-1] = note
}

func (l *entryList) render(b *strings.Builder) {
	for i, v := range l.values {
		b.WriteString(styleInitSuccess.Render("  + " + v))
		b.WriteString("\n")
		if n, ok := l.notes[i]; ok {
			b.WriteString(styleInitWarn.Render("    " + n))
			b.WriteString("\n")
		}
	}
	if len(l.values) > 0 {
		b.WriteString("\n")
	}
}

type initModel struct {
	step         wizardStep
	input        textinput.Model
	scanPaths    entryList
	excludes     entryList
	maxDepth     int
	problem      string // why the last input was rejected
	configPath   string
	configExists bool
	force        bool
	backup       string
	err          error
	cancelled    bool
}

func newInitModel(configPath string, configExists, force bool) *initModel {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return &initModel{
		step:         stepIntro,
		input:        ti,
		maxDepth:     scanner.DefaultMaxDepth,
		configPath:   configPath,
		configExists: configExists,
		force:        force,
	}
}

func (m *initModel) Init() tea.Cmd {
	return nil
}

// enter moves to step and readies the prompt for it.
func (m *initModel) enter(step wizardStep) tea.Cmd {
	m.step = step
	m.problem = ""
	m.input.Reset()
	switch step {
	case stepScanPaths:
		m.input.Placeholder = "~/code"
	case stepExcludes:
		m.input.Placeholder = "**/fixtures/**"
	case stepDepth:
		m.input.Placeholder = strconv.Itoa(m.maxDepth)
	default:
		m.input.Blur()
		return nil
	}
	m.input.Focus()
	return textinput.Blink
}

func (m *initModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	k := keyMsg.String()
	if k == "ctrl+c" {
		m.cancelled = true
		return m, tea.Quit
	}

	switch m.step {
	case stepIntro:
		switch k {
		case "enter":
			if m.configExists {
				return m, m.enter(stepReplace)
			}
			return m, m.enter(stepScanPaths)
		case "q", "esc":
			m.cancelled = true
			return m, tea.Quit
		}

	case stepReplace:
		if k == "y" || k == "Y" {
			return m, m.enter(stepScanPaths)
		}
		m.cancelled = true
		return m, tea.Quit

	case stepScanPaths, stepExcludes, stepDepth:
		switch k {
		case "enter":
			return m, m.submit(strings.TrimSpace(m.input.Value()))
		case "esc":
			if m.step == stepScanPaths {
				m.cancelled = true
				return m, tea.Quit
			}
			return m, m.enter(m.step - 1)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(keyMsg)
		return m, cmd

	case stepReview:
		switch k {
		case "enter":
			m.backup, m.err = config.WriteStarter(m.config(), m.configPath, m.force)
			m.step = stepDone
			return m, tea.Quit
		case "esc":
			return m, m.enter(stepDepth)
		}

	case stepDone:
		return m, tea.Quit
	}
	return m, nil
}

// submit handles Enter on an input step. A blank line finishes the step.
func (m *initModel) submit(val string) tea.Cmd {
	defer m.input.Reset()

	switch m.step {
	case stepScanPaths:
		if val == "" {
			if len(m.scanPaths.values) == 0 {
				m.problem = "Add at least one path"
				return nil
			}
			return m.enter(stepExcludes)
		}
		m.problem = ""
		if slices.Contains(m.scanPaths.values, val) {
			return nil
		}
		note := ""
		if expanded, exists := expandAndCheck(val); !exists {
			note = expanded + " does not exist yet"
		}
		m.scanPaths.add(val, note)

	case stepExcludes:
		if val == "" {
			return m.enter(stepDepth)
		}
		if err := checkExclude(val); err != nil {
			m.problem = err.Error()
			return nil
		}
		m.problem = ""
		if !slices.Contains(m.excludes.values, val) {
			m.excludes.add(val, "")
		}

	case stepDepth:
		if val != "" {
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				m.problem = fmt.Sprintf("%q is not a positive number", val)
				return nil
			}
			m.maxDepth = n
		}
		return m.enter(stepReview)
	}
	return nil
}

// checkExclude rejects a pattern that config validation would drop.
func checkExclude(p string) error {
	if !glob.IsValid(p) {
		return fmt.Errorf("%q is not a usable pattern", p)
	}
	_, err := glob.Compile(strings.TrimPrefix(p, "!"), glob.Options{})
	return err
}

// config is the starter config the wizard writes.
func (m *initModel) config() *config.Config {
	cfg := config.NewConfig()
	cfg.ScanPaths = slices.Clone(m.scanPaths.values)
	cfg.ExcludePatterns = append(cfg.ExcludePatterns, m.excludes.values...)
	cfg.MaxDepth = m.maxDepth
	return cfg
}

func (m *initModel) View() string {
	var b strings.Builder

	prompt := func(title, ask string, list *entryList) {
		b.WriteString(styleInitTitle.Render(title))
		b.WriteString("\n\n")
		if list != nil {
			list.render(&b)
		}
		b.WriteString(ask)
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.problem != "" {
			b.WriteString(styleInitWarn.Render("  " + m.problem))
			b.WriteString("\n")
		}
		b.WriteString(styleInitDim.Render("[Enter] on an empty line to continue  [Esc] back"))
		b.WriteString("\n")
	}

	switch m.step {
	case stepIntro:
		b.WriteString(styleInitTitle.Render("depsweep setup"))
		b.WriteString("\n\n")
		b.WriteString("Where your projects live, what to skip and how deep to look.\n")
		b.WriteString("The config goes to ")
		b.WriteString(styleInitDim.Render(m.configPath))
		b.WriteString("\n\n")
		b.WriteString(styleInitDim.Render("Press Enter to start, Esc to cancel"))
		b.WriteString("\n")

	case stepReplace:
		b.WriteString(styleInitWarn.Render("A config already exists"))
		b.WriteString(" at ")
		b.WriteString(styleInitDim.Render(m.configPath))
		b.WriteString("\n\nReplace it? The old file is kept as a backup. ")
		b.WriteString(styleInitDim.Render("[y/N]"))
		b.WriteString("\n")

	case stepScanPaths:
		ask := "Directory that holds your projects:"
		if len(m.scanPaths.values) > 0 {
			ask = "Another directory:"
		}
		prompt("1/3 Scan paths", ask, &m.scanPaths)

	case stepExcludes:
		b.WriteString(styleInitDim.Render("Always skipped: " + strings.Join(config.NewConfig().ExcludePatterns, " ")))
		b.WriteString("\n")
		prompt("2/3 Exclude patterns", "Extra glob of directories to skip (optional):", &m.excludes)

	case stepDepth:
		prompt("3/3 Max depth", fmt.Sprintf("Levels below each scan path to search (blank keeps %d):", m.maxDepth), nil)

	case stepReview:
		cfg := m.config()
		b.WriteString(styleInitTitle.Render("Review"))
		b.WriteString("\n\n  scan_paths:\n")
		for _, p := range cfg.ScanPaths {
			b.WriteString("    - " + p + "\n")
		}
		fmt.Fprintf(&b, "  exclude_patterns: %d (%d added)\n", len(cfg.ExcludePatterns), len(m.excludes.values))
		for _, p := range m.excludes.values {
			b.WriteString("    - " + p + "\n")
		}
		fmt.Fprintf(&b, "  max_depth: %d\n\n", cfg.MaxDepth)
		b.WriteString(styleInitDim.Render("[Enter] Write config  [Esc] Go back"))
		b.WriteString("\n")

	case stepDone:
		if m.err != nil {
			b.WriteString(styleInitWarn.Render("Error: " + m.err.Error()))
			b.WriteString("\n")
			break
		}
		b.WriteString(styleInitSuccess.Render("Config saved to " + m.configPath))
		b.WriteString("\n")
		if m.backup != "" {
			b.WriteString(styleInitDim.Render("Previous config moved to " + m.backup))
			b.WriteString("\n")
		}
		b.WriteString("\nRun ")
		b.WriteString(styleInitTitle.Render("depsweep"))
		b.WriteString(" to see what your dependencies cost.\n")
	}

	return b.String()
}

func expandAndCheck(path string) (expanded string, exists bool) {
	expanded = config.ExpandHome(path)
	_, err := os.Stat(expanded)
	return expanded, err == nil
}
