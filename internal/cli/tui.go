package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"attimuite/internal/app"
	"attimuite/internal/domain"
)

// tickInterval is how often the TUI advances the session clock.
const tickInterval = 50 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	stageStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 2).
			Width(24).
			Align(lipgloss.Center)

	messageStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F25D94")).
			MarginTop(1)

	narrationStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#04B575"))

	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

var handKeys = map[string]domain.Hand{
	"g": domain.Rock, "1": domain.Rock,
	"c": domain.Scissors, "2": domain.Scissors,
	"p": domain.Paper, "3": domain.Paper,
}

var directionKeys = map[string]domain.Direction{
	"up":    domain.Up,
	"right": domain.Right,
	"down":  domain.Down,
	"left":  domain.Left,
}

type playModel struct {
	ctx       context.Context
	game      *game
	snap      domain.Snapshot
	narration string
	lastTick  time.Time
	width     int
}

// newPlayModel opens and starts the session; the first frame already shows the opening rock.
func newPlayModel(ctx context.Context, g *game, now time.Time) *playModel {
	m := &playModel{ctx: ctx, game: g, lastTick: now}
	m.apply(g.session.Open(ctx))
	m.apply(g.session.Start())
	return m
}

func (m *playModel) Init() tea.Cmd {
	return tick()
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		if elapsed := now.Sub(m.lastTick); elapsed > 0 {
			m.apply(m.game.session.Advance(m.ctx, elapsed))
		}
		m.lastTick = now
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.apply(m.game.session.ResetScoresAndAll(m.ctx))
		}
		if hand, ok := handKeys[key]; ok {
			m.apply(m.game.session.PickHand(hand))
		}
		if dir, ok := directionKeys[key]; ok {
			m.apply(m.game.session.PointDirection(dir))
		}
	}
	return m, nil
}

func (m *playModel) apply(events []app.Event) {
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case app.StateChangedPayload:
			m.snap = p.Snapshot
		case app.NarrationPayload:
			m.narration = m.game.catalog.Lookup(string(p.Request.Key), p.Request.Language)
		}
	}
}

func (m *playModel) text(key string) string {
	return m.game.catalog.Lookup(key, m.game.language)
}

func (m *playModel) View() string {
	cpu := stageStyle.Render(fmt.Sprintf("%s\n[%s]%s", m.game.agent.Name, m.snap.CPUImage(), m.handLabel(m.snap.CPUHand)))
	player := stageStyle.Render(fmt.Sprintf("%s\n[%s]%s", m.text("ui.you"), m.snap.PlayerImage(), m.handLabel(m.snap.PlayerHand)))

	var message string
	if m.snap.Message != "" {
		message = messageStyle.Render(m.text(string(m.snap.Message)))
	}
	var spoken string
	if m.narration != "" {
		spoken = narrationStyle.Render("♪ " + m.narration)
	}

	stage := lipgloss.JoinHorizontal(lipgloss.Top, cpu, " ", player)
	if m.width > 0 && m.width < lipgloss.Width(stage) {
		stage = lipgloss.JoinVertical(lipgloss.Left, cpu, player)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Attimuite"),
		stage,
		message,
		spoken,
		m.buttons(),
		fmt.Sprintf("%s  %s %d - %d %s", m.text("ui.score"), m.text("ui.you"), m.snap.Score.Player, m.snap.Score.CPU, m.game.agent.Name),
		infoStyle.Render(m.text("ui.help")),
	) + "\n"
}

func (m *playModel) handLabel(h domain.Hand) string {
	if h == "" {
		return ""
	}
	return " " + m.text("hand."+string(h))
}

func (m *playModel) buttons() string {
	var labels []string
	switch {
	case m.snap.HandButtonsVisible():
		for _, h := range domain.AllHands {
			labels = append(labels, buttonStyle.Render(fmt.Sprintf("%s %s", domain.HandButtonImage(h), m.text("hand."+string(h)))))
		}
	case m.snap.DirectionButtonsVisible():
		for _, d := range domain.AllDirections {
			labels = append(labels, buttonStyle.Render(fmt.Sprintf("%s %s", domain.DirectionButtonImage(d), m.text("direction."+string(d)))))
		}
	}
	if len(labels) == 0 {
		return ""
	}
	if m.snap.IsTransitioning {
		return infoStyle.Render(strings.Repeat("·", 3))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, labels...)
}

// runTUI plays one session in the alternate screen until the user quits.
func runTUI(ctx context.Context, g *game) error {
	m := newPlayModel(ctx, g, time.Now())
	defer g.close(ctx)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
