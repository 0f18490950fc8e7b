package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mediaingest/internal/app"
	"mediaingest/internal/domain"
	appErrors "mediaingest/internal/errors"
)

// Phase represents the current state of the TUI
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseMetadata
	PhaseTransferring
	PhaseConfirm
	PhaseDone
	PhaseCancelled
	PhaseError
)

const maxNotices = 5

// Messages sent by the Bridge while a session runs.
type (
	StateMsg struct {
		State app.State
	}
	NoticeMsg struct {
		Text string
	}
	ProgressMsg struct {
		Event domain.ProgressEvent
	}
	// MetadataRequestMsg opens the shoot details form. A nil reply cancels.
	MetadataRequestMsg struct {
		Batch     domain.StagingBatch
		Suggested domain.ShootMetadata
		Reply     chan<- *domain.ShootMetadata
	}
	RepeatRequestMsg struct {
		Summary domain.TransferSummary
		Reply   chan<- bool
	}
	SessionDoneMsg struct {
		Outcome app.Outcome
		Err     error
	}
)

const (
	fieldClient = iota
	fieldProject
	fieldDate
)

var fieldLabels = []string{"Client Name:", "Project Title:", "Shoot Date (YYYY-MM-DD):"}

type Config struct {
	Destination string
	Now         func() time.Time
}

type Model struct {
	config   Config
	Phase    Phase
	State    app.State
	spinner  spinner.Model
	progress progress.Model

	inputs    []textinput.Model
	focus     int
	formErr   string
	batch     domain.StagingBatch
	metaReply chan<- *domain.ShootMetadata

	repeatReply      chan<- bool
	confirmSelection bool // true = yes, false = no

	event    domain.ProgressEvent
	Summary  *domain.TransferSummary
	Notices  []string
	Err      error
	Quitting bool
	width    int
	height   int
}

func NewModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	inputs := make([]textinput.Model, len(fieldLabels))
	for i := range inputs {
		input := textinput.New()
		input.Prompt = ""
		input.CharLimit = 64
		input.Width = 32
		inputs[i] = input
	}
	inputs[fieldClient].Placeholder = "Acme"
	inputs[fieldProject].Placeholder = "Spring Launch"
	inputs[fieldDate].Placeholder = domain.DateLayout
	inputs[fieldDate].CharLimit = len(domain.DateLayout)

	return Model{
		config:   cfg,
		Phase:    PhaseWaiting,
		spinner:  s,
		progress: p,
		inputs:   inputs,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-20, 60)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateMsg:
		m.State = msg.State
		switch msg.State {
		case app.StateWaitingForDevice:
			m.Phase = PhaseWaiting
		case app.StateTransferring:
			m.Phase = PhaseTransferring
			m.event = domain.ProgressEvent{}
		}
		return m, nil

	case NoticeMsg:
		m.Notices = append(m.Notices, msg.Text)
		if len(m.Notices) > maxNotices {
			m.Notices = m.Notices[len(m.Notices)-maxNotices:]
		}
		return m, nil

	case MetadataRequestMsg:
		m.Phase = PhaseMetadata
		m.batch = msg.Batch
		m.metaReply = msg.Reply
		m.formErr = ""
		m.inputs[fieldClient].SetValue(msg.Suggested.Client)
		m.inputs[fieldProject].SetValue(msg.Suggested.Project)
		m.inputs[fieldDate].SetValue(msg.Suggested.Date)
		cmd := m.focusField(fieldClient)
		return m, cmd

	case ProgressMsg:
		m.event = msg.Event
		return m, nil

	case RepeatRequestMsg:
		summary := msg.Summary
		m.Phase = PhaseConfirm
		m.Summary = &summary
		m.repeatReply = msg.Reply
		m.confirmSelection = true
		return m, nil

	case SessionDoneMsg:
		m.release()
		switch {
		case msg.Err != nil:
			m.Phase = PhaseError
			m.Err = msg.Err
		case msg.Outcome == app.OutcomeCancelled:
			m.Phase = PhaseCancelled
		default:
			m.Phase = PhaseDone
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.Phase == PhaseMetadata {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.Phase {
	case PhaseMetadata:
		switch msg.String() {
		case "esc":
			m.answerMetadata(nil)
			m.Phase = PhaseCancelled
			return m, nil
		case "tab", "down":
			cmd := m.focusField((m.focus + 1) % len(m.inputs))
			return m, cmd
		case "shift+tab", "up":
			cmd := m.focusField((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, cmd
		case "enter":
			if m.focus < len(m.inputs)-1 {
				cmd := m.focusField(m.focus + 1)
				return m, cmd
			}
			return m.submitForm()
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd

	case PhaseConfirm:
		switch msg.String() {
		case "left", "h", "y", "Y":
			m.confirmSelection = true
		case "right", "l", "n", "N":
			m.confirmSelection = false
		case "enter":
			again := m.confirmSelection
			m.answerRepeat(again)
			if again {
				m.Phase = PhaseWaiting
			}
		case "q":
			return m.quit()
		}
		return m, nil

	case PhaseDone, PhaseCancelled, PhaseError:
		switch msg.String() {
		case "enter", "q", "esc":
			return m.quit()
		}

	case PhaseTransferring:
		// A started run is not interrupted by q, only by ctrl+c.

	default:
		if msg.String() == "q" {
			return m.quit()
		}
	}
	return m, nil
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	meta := domain.NewShootMetadata(
		m.inputs[fieldClient].Value(),
		m.inputs[fieldProject].Value(),
		m.inputs[fieldDate].Value(),
		m.now(),
	)
	if err := meta.Validate(); err != nil {
		m.formErr = err.Error()
		return m, nil
	}
	m.formErr = ""
	m.answerMetadata(&meta)
	m.Phase = PhaseTransferring
	m.event = domain.ProgressEvent{}
	return m, nil
}

func (m *Model) focusField(index int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = index
	return m.inputs[index].Focus()
}

// Reply channels are buffered by the Bridge, so answering never blocks.
func (m *Model) answerMetadata(meta *domain.ShootMetadata) {
	if m.metaReply == nil {
		return
	}
	m.metaReply <- meta
	m.metaReply = nil
}

func (m *Model) answerRepeat(again bool) {
	if m.repeatReply == nil {
		return
	}
	m.repeatReply <- again
	m.repeatReply = nil
}

// release unblocks a session still waiting for an answer.
func (m *Model) release() {
	m.answerMetadata(nil)
	m.answerRepeat(false)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.release()
	m.Quitting = true
	return m, tea.Quit
}

func (m Model) now() time.Time {
	if m.config.Now != nil {
		return m.config.Now()
	}
	return time.Now()
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.Phase {
	case PhaseWaiting:
		b.WriteString(m.renderWaiting())
	case PhaseMetadata:
		b.WriteString(m.renderForm())
	case PhaseTransferring:
		b.WriteString(m.renderTransfer())
	case PhaseConfirm:
		b.WriteString(m.renderSummary())
		b.WriteString("\n")
		b.WriteString(m.renderConfirmPrompt())
	case PhaseDone:
		b.WriteString(m.renderSummary())
		b.WriteString("\n")
		b.WriteString(successStyle.Render(fmt.Sprintf("%s Media ingest completed.", iconSuccess)))
		b.WriteString("\n")
	case PhaseCancelled:
		b.WriteString(warningStyle.Render(fmt.Sprintf("%s Operation cancelled by user.", iconWarning)))
		b.WriteString("\n")
	case PhaseError:
		b.WriteString(m.renderError())
	}

	if len(m.Notices) > 0 {
		b.WriteString("\n")
		for _, notice := range m.Notices {
			b.WriteString(dimStyle.Render("  " + notice))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render(iconCard + " Media Ingest")
	subtitle := subtitleStyle.Render("From SD card to Nextcloud")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		"",
		dimStyle.Render(fmt.Sprintf("%s Destination: %s", iconFolder, shortenPath(m.config.Destination))),
	)
}

func (m Model) renderWaiting() string {
	return fmt.Sprintf("%s Waiting for SD card...\n\n  %s\n",
		m.spinner.View(),
		dimStyle.Render("Insert a card, its contents will be staged automatically."),
	)
}

func (m Model) renderForm() string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render("Enter Metadata"))
	b.WriteString("\n\n")
	if m.batch.Path != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Staged in %s", m.batch.Path)))
		b.WriteString("\n\n")
	}

	for i, input := range m.inputs {
		label := labelStyle.Render(fieldLabels[i])
		if i == m.focus {
			label = focusedLabelStyle.Render(fieldLabels[i])
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", label, input.View()))
	}

	if m.formErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("  %s %s", iconError, m.formErr)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderTransfer() string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render("Copying Files"))
	b.WriteString("\n\n")

	percent := 0.0
	if m.event.Total > 0 {
		percent = float64(m.event.Current) / float64(m.event.Total)
	}

	message := m.event.Message
	if message == "" {
		message = "Preparing..."
	}
	b.WriteString(fmt.Sprintf("  %s %s\n\n", m.spinner.View(), message))
	b.WriteString(fmt.Sprintf("  %s\n", m.progress.ViewAs(percent)))

	b.WriteString(fmt.Sprintf("  %s %s\n",
		countStyle.Render(fmt.Sprintf("%d/%d files", m.event.Current, m.event.Total)),
		dimStyle.Render(fmt.Sprintf("(%.0f%%)", percent*100)),
	))

	if m.event.File != "" {
		b.WriteString(fmt.Sprintf("\n  %s %s\n", iconArrow, fileNameStyle.Render(filepath.Base(m.event.File))))
	}
	return b.String()
}

func (m Model) renderSummary() string {
	if m.Summary == nil {
		return ""
	}
	s := m.Summary

	var b strings.Builder
	b.WriteString(sectionStyle.Render("Summary"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Folder:"), fileNameStyle.Render(shortenPath(s.DestFolder))))
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Copied:"), statValueStyle.Render(fmt.Sprintf("%d of %d files", s.CopiedCount(), s.Total))))
	if len(s.CopyFailures) > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Failed:"), errorStyle.Render(fmt.Sprintf("%s %d", iconError, len(s.CopyFailures)))))
	}
	if len(s.DeleteFailures) > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Not deleted:"), warningStyle.Render(fmt.Sprintf("%s %d", iconWarning, len(s.DeleteFailures)))))
	}
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Folders removed:"), dimStyle.Render(fmt.Sprintf("%d", len(s.RemovedDirs)))))

	return b.String()
}

func (m Model) renderConfirmPrompt() string {
	prompt := confirmPromptStyle.Render("Do you want to ingest another SD card?")

	var yesBtn, noBtn string
	if m.confirmSelection {
		yesBtn = highlightBoxStyle.
			Background(lipgloss.Color("#2D5A27")).
			Render(" Yes ")
		noBtn = boxStyle.Render(" No ")
	} else {
		yesBtn = boxStyle.Render(" Yes ")
		noBtn = highlightBoxStyle.
			Background(lipgloss.Color("#5A2727")).
			Render(" No ")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center, yesBtn, "  ", noBtn)

	return lipgloss.JoinVertical(lipgloss.Left, prompt, "", buttons)
}

func (m Model) renderError() string {
	message := "unknown error"
	if m.Err != nil {
		message = appErrors.UserMessage(m.Err)
	}

	return highlightBoxStyle.
		BorderForeground(errorColor).
		Render(errorStyle.Render(fmt.Sprintf("%s Error: %s", iconError, message)))
}

func (m Model) renderHelp() string {
	var help string
	switch m.Phase {
	case PhaseWaiting:
		help = "Press q to quit"
	case PhaseMetadata:
		help = "Tab to switch fields • Enter to continue • Esc to cancel"
	case PhaseTransferring:
		help = "Copying files... Please wait"
	case PhaseConfirm:
		help = "← → or y/n to select • Enter to confirm • q to quit"
	case PhaseDone, PhaseCancelled:
		help = "Press Enter to exit"
	case PhaseError:
		help = "Press Enter or q to exit"
	}
	return helpStyle.Render(help)
}

// shortenPath replaces the home directory prefix with ~ for display
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
