package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/fallhouse/pkg/place"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	GameName  = "THE HOUSE ON THE HILL"
	startPath = "/"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	page         *PageView
	session      *SessionInfo
	pageViewport viewport.Model
	metaViewport viewport.Model
	selected     int
	ready        bool
	width        int
	height       int
	err          error
	status       string
	loading      bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type pageLoadedMsg struct {
	page    *PageView
	session *SessionInfo
	err     error
}

type progressTickMsg struct{}

var (
	pagePanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	endingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // red
			Bold(true)

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	selectedLinkStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	currentPlaceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

var titleCaser = cases.Title(language.English)

var placeNames = map[place.Place]string{
	place.FrontDoor:   "front door",
	place.FirstFloor:  "first floor",
	place.SecondFloor: "second floor",
	place.ThirdFloor:  "third floor",
}

// placeLabel is the display name of p in the history panel.
func placeLabel(p place.Place) string {
	name, ok := placeNames[p]
	if !ok {
		return p.String()
	}
	return titleCaser.String(name)
}

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	pageVp := viewport.New(50, 20)
	pageVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		pageViewport: pageVp,
		metaViewport: metaVp,
		loading:      true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.navigate(startPath), progressTick())
}

func (m ConsoleUI) navigate(path string) tea.Cmd {
	return func() tea.Msg {
		page, err := fetchPage(m.client, m.config.APIBaseURL, path)
		if err != nil {
			return pageLoadedMsg{err: err}
		}
		// The history panel is informational; a failed lookup leaves it empty.
		session, _ := getSession(m.client, m.config.APIBaseURL)
		return pageLoadedMsg{page: page, session: session}
	}
}

// follow starts loading the page behind link i.
func (m ConsoleUI) follow(i int) (ConsoleUI, tea.Cmd) {
	if m.loading || m.page == nil || i < 0 || i >= len(m.page.Links) {
		return m, nil
	}
	m.selected = i
	m.loading = true
	m.progressTick = 0
	m.status = ""
	m.writePageContent()
	return m, tea.Batch(m.navigate(m.page.Links[i].Href), progressTick())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.pageViewport, vpCmd = m.pageViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writePageContent()
		m.metaViewport.SetContent(writeMetadata(m.session))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			m.moveSelection(-1)
			return m, nil
		case tea.KeyDown:
			m.moveSelection(1)
			return m, nil
		case tea.KeyEnter:
			return m.follow(m.selected)
		}

		switch key := msg.String(); key {
		case "k":
			m.moveSelection(-1)
			return m, nil
		case "j":
			m.moveSelection(1)
			return m, nil
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			return m.follow(int(key[0] - '1'))
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.progressTick = 0
			m.status = ""
			return m, tea.Batch(m.navigate(startPath), progressTick())
		case "c":
			m.status = m.copyURL()
			m.writePageContent()
			return m, nil
		}

	case pageLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.page = msg.page
			m.session = msg.session
			m.selected = 0
		}
		m.writePageContent()
		m.pageViewport.GotoTop()
		m.metaViewport.SetContent(writeMetadata(m.session))
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writePageContent()
			return m, progressTick()
		}
		return m, nil
	}

	m.pageViewport, vpCmd = m.pageViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(vpCmd, mvCmd)
}

func (m *ConsoleUI) moveSelection(delta int) {
	if m.page == nil || len(m.page.Links) == 0 {
		return
	}
	m.selected = (m.selected + delta + len(m.page.Links)) % len(m.page.Links)
	m.writePageContent()
}

func (m ConsoleUI) copyURL() string {
	if m.page == nil {
		return "Nothing to copy yet"
	}
	if err := clipboard.WriteAll(m.page.URL); err != nil {
		return "Clipboard unavailable: " + err.Error()
	}
	return "Copied " + m.page.URL
}

func (m *ConsoleUI) panelWidths() (int, int) {
	pageWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - pageWidth - 6
	return pageWidth, metaWidth
}

func (m *ConsoleUI) resize() {
	pageWidth, metaWidth := m.panelWidths()
	m.pageViewport.Width = pageWidth - 2
	m.pageViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
}

// writePageContent renders the current page for the current viewport width.
func (m *ConsoleUI) writePageContent() {
	width := m.pageViewport.Width - 6 // Account for left(3) + right(3) padding
	if width < 10 {
		width = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(GameName) + "\n\n")

	if m.err != nil {
		content.WriteString(errorStyle.Render(wordwrap.String("Error: "+m.err.Error(), width)) + "\n\n")
		content.WriteString(promptStyle.Render("Press r to start over.") + "\n")
	}

	if m.page != nil {
		heading := headingStyle
		if m.page.Ending {
			heading = endingStyle
		}
		if m.page.Title != "" {
			content.WriteString(heading.Render(m.page.Title) + "\n\n")
		}

		for _, p := range m.page.Paragraphs {
			content.WriteString(wordwrap.String(p, width) + "\n\n")
		}

		content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

		for i, l := range m.page.Links {
			label := fmt.Sprintf("%d. %s", i+1, l.Label)
			if i == m.selected {
				content.WriteString(selectedLinkStyle.Render("▶ "+label) + "\n")
			} else {
				content.WriteString(linkStyle.Render("  "+label) + "\n")
			}
		}
		content.WriteString("\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar() + "\n")
	}
	if m.status != "" {
		content.WriteString(statusStyle.Render(m.status) + "\n")
	}

	m.pageViewport.SetContent(content.String())
}

func writeMetadata(s *SessionInfo) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("HISTORY") + "\n\n")

	switch {
	case s == nil:
		content.WriteString("Unavailable\n")
	case len(s.History) == 0:
		content.WriteString("Nowhere yet\n")
	default:
		for i, p := range s.History {
			line := fmt.Sprintf("%2d. %s", i+1, placeLabel(p))
			if i == len(s.History)-1 {
				line = currentPlaceStyle.Render(line)
			}
			content.WriteString(line + "\n")
		}
	}

	if s != nil && s.GameOver {
		content.WriteString("\n" + endingStyle.Render("GAME OVER") + "\n")
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• ↑/↓: Choose\n")
	content.WriteString("• Enter, 1-9: Go\n")
	content.WriteString("• r: Start over\n")
	content.WriteString("• c: Copy URL\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the house?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	pageWidth, metaWidth := m.panelWidths()

	footer := ""
	if m.page != nil {
		footer = promptStyle.Render(m.page.Path)
	}

	pagePanel := pagePanelStyle.Width(pageWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.pageViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(pageWidth-4, 0))),
			footer,
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, pagePanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.pageViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
