package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sbccheck/internal/domain"
	"sbccheck/internal/retrieval"
)

// EvidencePort is the TUI-facing subset of the analysis service.
type EvidencePort interface {
	Evidence(q domain.EvidenceQuery, topK int, minScore float64) ([]domain.EvidenceHit, error)
}

// entry pairs a report finding with the bucket it came from.
type entry struct {
	bucket  string
	finding domain.ReportFinding
}

// Model is the Bubble Tea model for the findings browser. Up/down walk
// the findings; typing a free query and pressing Enter runs an ad-hoc
// evidence retrieval against the knowledge base.
type Model struct {
	service  EvidencePort
	input    textinput.Model
	viewport viewport.Model
	entries  []entry
	hits     []domain.EvidenceHit
	summary  string
	status   string
	cursor   int
	ready    bool
	showHits bool
}

// New creates a new TUI model over a formatted report.
func New(service EvidencePort, report domain.Report) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type keywords and press Enter for ad-hoc evidence search"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	var entries []entry
	for _, f := range report.Violations {
		entries = append(entries, entry{bucket: "violation", finding: f})
	}
	for _, f := range report.Warnings {
		entries = append(entries, entry{bucket: "warning", finding: f})
	}

	summary := fmt.Sprintf("rooms=%d violations=%d warnings=%d skipped=%d",
		report.Summary.RoomsTotal, report.Summary.ViolationsTotal,
		report.Summary.WarningsTotal, report.Summary.SkippedMissingData)

	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		entries:  entries,
		summary:  summary,
		status:   "Report loaded. Up/down to browse findings.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2
		totalFooterLines := 1
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				hits, err := m.service.Evidence(domain.EvidenceQuery{
					Keywords: strings.Fields(q),
				}, 10, retrieval.DefaultMinScore)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.hits = nil
					m.showHits = false
				} else {
					m.status = fmt.Sprintf("Evidence for %q", q)
					m.hits = hits
					m.cursor = 0
					m.showHits = true
				}
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
			// Empty query returns to the findings list.
			m.showHits = false
			m.cursor = 0
			m.status = "Report loaded. Up/down to browse findings."
			m.viewport.SetContent(m.renderCurrent())
			return m, nil
		case "down":
			if n := m.itemCount(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			if n := m.itemCount(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the current finding or hit.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("SBC Compliance Report")
	summary := summaryStyle.Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) itemCount() int {
	if m.showHits {
		return len(m.hits)
	}
	return len(m.entries)
}

func (m Model) renderCurrent() string {
	if m.showHits {
		return m.renderHit()
	}
	return m.renderFinding()
}

func (m Model) renderFinding() string {
	if len(m.entries) == 0 {
		return "No findings. The unit passed every applicable check."
	}
	e := m.entries[m.cursor]
	f := e.finding

	var b strings.Builder
	fmt.Fprintf(&b, "Finding %d/%d  [%s]  %s\n", m.cursor+1, len(m.entries), e.bucket, f.RuleID)
	if f.RoomID != nil {
		fmt.Fprintf(&b, "Room: %s (%s)\n", *f.RoomID, f.RoomType)
	} else {
		fmt.Fprintf(&b, "Scope: dwelling unit\n")
	}
	if f.Expected != "" {
		fmt.Fprintf(&b, "Expected: %s\nActual:   %s\n", f.Expected, f.Actual)
	}
	if f.RuleSentence != nil {
		b.WriteString("\n" + highlightStyle.Render(*f.RuleSentence) + "\n")
	}
	if f.Ref.Doc != "" {
		fmt.Fprintf(&b, "\nRef: %s · %s", f.Ref.Doc, f.Ref.Section)
		if f.Ref.Page != nil {
			fmt.Fprintf(&b, " · p.%d", *f.Ref.Page)
		}
		fmt.Fprintf(&b, " · chunk %d (%s)", f.Ref.ChunkID, f.Ref.Source)
	}
	return b.String()
}

func (m Model) renderHit() string {
	if len(m.hits) == 0 {
		return "No evidence found for that query."
	}
	h := m.hits[m.cursor]
	title := fmt.Sprintf("Hit %d/%d  score=%.3f  %s · %s", m.cursor+1, len(m.hits), h.Score, h.Doc, h.Section)
	return title + "\n\n" + h.Quote
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
