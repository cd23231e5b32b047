package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/parley/pkg/card"
	"github.com/jwebster45206/parley/pkg/catalog"
	"github.com/jwebster45206/parley/pkg/chat"
	"github.com/jwebster45206/parley/pkg/conversation"
	"github.com/jwebster45206/parley/pkg/narrative"
	"github.com/jwebster45206/parley/pkg/obligation"
	"github.com/muesli/reflow/wordwrap"
)

const PlaceHolderText = "Card number to speak, l to listen, /help for commands"

var kinds = []conversation.Kind{
	conversation.KindFriendlyChat,
	conversation.KindRequest,
	conversation.KindDelivery,
	conversation.KindResolution,
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	backend      *Backend
	npcs         []*catalog.NPC
	session      *conversation.Session
	transcript   []chat.ChatMessage
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// NPC selection state
	showSelectModal bool
	selectedNPC     int
	selectedKind    int

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
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

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	unplayableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Strikethrough(true)

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

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(backend *Backend, npcs []*catalog.NPC) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 100
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		backend:         backend,
		npcs:            npcs,
		textarea:        ta,
		chatViewport:    chatVp,
		metaViewport:    metaVp,
		showSelectModal: true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m *ConsoleUI) layout() {
	chatWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m *ConsoleUI) addLine(role, content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	m.transcript = append(m.transcript, chat.ChatMessage{Role: role, Content: content})
}

// writeChatContent rebuilds the transcript for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("PARLEY") + "\n\n")
	if m.session != nil {
		content.WriteString(fmt.Sprintf("A conversation with %s.\n\n", m.session.NPC().Name))
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	npcName := "Narrator"
	if m.session != nil {
		npcName = m.session.NPC().Name
	}

	for _, msg := range m.transcript {
		switch msg.Role {
		case chat.ChatRoleAgent:
			content.WriteString(speakerStyle.Render(npcName+":") + " " + wordwrap.String(msg.Content, chatWidth-len(npcName)-2) + "\n\n")
		case chat.ChatRoleUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, chatWidth-5) + "\n\n")
		case chat.ChatRoleSystem:
			content.WriteString(systemStyle.Render(wordwrap.String(msg.Content, chatWidth)) + "\n\n")
		}
	}

	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}
	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func writeMetadata(v conversation.View) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render(strings.ToUpper(v.NPCName)) + "\n\n")

	fmt.Fprintf(&content, "Kind:       %s\n", narrative.Title(string(v.Kind)))
	fmt.Fprintf(&content, "State:      %s\n", narrative.Title(v.State.String()))
	fmt.Fprintf(&content, "Flow:       %+d\n", v.Flow)
	fmt.Fprintf(&content, "Momentum:   %d\n", v.Momentum)
	fmt.Fprintf(&content, "Doubt:      %d/10\n", v.Doubt)
	fmt.Fprintf(&content, "Focus:      %d/%d\n", v.Focus, v.FocusCapacity)
	fmt.Fprintf(&content, "Atmosphere: %s\n", narrative.Title(string(v.Atmosphere)))
	fmt.Fprintf(&content, "Turn:       %d\n\n", v.Turn)
	if v.MustListen {
		content.WriteString(unplayableStyle.Render("Listen before speaking again") + "\n\n")
	}

	content.WriteString("Temperament:\n")
	content.WriteString(wordwrap.String(v.Rules, 28) + "\n\n")

	content.WriteString("Hand:\n")
	if len(v.Hand) == 0 {
		content.WriteString("Empty\n")
	}
	for i, inst := range v.Hand {
		line := fmt.Sprintf("%d. %s (%d) %s", i+1, inst.Def.Name, inst.Def.Focus, narrative.Title(string(inst.Def.Persistence)))
		if !inst.Playable {
			line = unplayableStyle.Render(line)
		}
		content.WriteString(line + "\n")
	}

	if len(v.Requests) > 0 {
		content.WriteString("\nRequests:\n")
		for _, inst := range v.Requests {
			fmt.Fprintf(&content, "• %s at %d momentum\n", inst.Def.Name, inst.Threshold())
		}
	}

	fmt.Fprintf(&content, "\nDraw %d · Discard %d · Exhaust %d\n", v.Counts.Draw, v.Counts.Discard, v.Counts.Exhaust)
	if v.Ended {
		content.WriteString("\n" + loadingStyle.Render("Ended: "+narrative.Title(string(v.EndReason))) + "\n")
	}
	return content.String()
}

func (m *ConsoleUI) refreshMeta() {
	if m.session != nil {
		m.metaViewport.SetContent(writeMetadata(m.session.View()))
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showSelectModal {
		return m.updateSelectModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.writeChatContent()
		m.refreshMeta()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			return m.handleInput(input)
		}

	case turnMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.recordTurn(msg.turn)
		}
		m.writeChatContent()
		m.refreshMeta()
		if msg.turn != nil && msg.turn.Ended {
			return m, m.backend.end(m.session)
		}

	case endedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.recordOutcome(msg.outcome)
		}
		m.writeChatContent()
		m.refreshMeta()

	case obligationsMsg:
		m.err = msg.err
		if msg.err == nil {
			m.addLine(chat.ChatRoleSystem, describeObligations(msg.queue))
		}
		m.writeChatContent()

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleInput(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(input)
	ended := m.session == nil || m.session.Ended()

	switch {
	case cmd == "/help":
		m.addLine(chat.ChatRoleSystem, `Commands:
• <number> - Speak the card at that position in your hand
• l, listen - Listen: refresh focus and draw
• /end - Leave the conversation
• /new - Start another conversation once this one is over
• /letters - Show your obligation queue
• /copy - Copy the transcript to the clipboard
• Ctrl+C - Quit`)

	case cmd == "/copy":
		lines := make([]string, 0, len(m.transcript))
		for _, msg := range m.transcript {
			lines = append(lines, msg.Role+": "+msg.Content)
		}
		if err := clipboard.WriteAll(chat.Transcript(lines)); err != nil {
			m.err = fmt.Errorf("failed to copy transcript: %w", err)
		} else {
			m.addLine(chat.ChatRoleSystem, "Transcript copied to clipboard.")
		}

	case cmd == "/letters":
		return m, m.backend.obligations()

	case cmd == "/new":
		if !ended {
			m.addLine(chat.ChatRoleSystem, "Finish this conversation first (/end).")
			break
		}
		m.session = nil
		m.transcript = nil
		m.err = nil
		m.showSelectModal = true
		return m, nil

	case ended:
		m.addLine(chat.ChatRoleSystem, "The conversation is over. Type /new to start another.")

	case cmd == "/end":
		m.loading = true
		m.progressTick = 0
		return m, tea.Batch(m.backend.end(m.session), progressTick())

	case cmd == "l" || cmd == "listen":
		m.addLine(chat.ChatRoleUser, "(listens)")
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.backend.listen(m.session), progressTick())

	default:
		n, err := strconv.Atoi(cmd)
		hand := m.session.Hand()
		if err != nil || n < 1 || n > len(hand) {
			m.addLine(chat.ChatRoleSystem, fmt.Sprintf("Unknown command %q. Type /help for commands.", input))
			break
		}
		return m.speak(hand[n-1])
	}

	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) speak(inst card.Instance) (tea.Model, tea.Cmd) {
	m.loading = true
	m.progressTick = 0
	m.writeChatContent()
	return m, tea.Batch(m.backend.speak(m.session, inst.Handle), progressTick())
}

func (m *ConsoleUI) recordTurn(res *conversation.TurnResult) {
	if res == nil {
		return
	}
	if res.Rejected {
		m.addLine(chat.ChatRoleSystem, "Not now: "+res.Reason)
		return
	}
	if res.Action == conversation.ActionSpeak && res.Played != nil {
		m.addLine(chat.ChatRoleUser, res.Played.Def.Dialogue)
		verdict := "fails"
		if res.Success {
			verdict = "succeeds"
		}
		line := fmt.Sprintf("%s %s at %d%%", res.Played.Def.Name, verdict, res.SuccessRate)
		if res.Needed > 0 {
			line += fmt.Sprintf(", needed %d%%", res.Needed)
		}
		m.addLine(chat.ChatRoleSystem, line+".")
	}
	m.addLine(chat.ChatRoleAgent, res.Narrative)
	if len(res.Effects) > 0 {
		m.addLine(chat.ChatRoleSystem, strings.Join(res.Effects, "; "))
	}
	if res.ForcedListen {
		m.addLine(chat.ChatRoleSystem, "You lose your footing and have to listen.")
	}
}

func (m *ConsoleUI) recordOutcome(out *conversation.Outcome) {
	if out == nil {
		return
	}
	verdict := "The conversation did not go your way."
	if out.Success {
		verdict = "The conversation went well."
	}
	lines := []string{
		verdict,
		fmt.Sprintf("%s → %s after %d turns.", narrative.Title(out.StartState.String()), narrative.Title(out.FinalState.String()), out.Turns),
		fmt.Sprintf("Earned %d %s token(s).", out.TokensEarned, out.TokenType),
	}
	if out.Obligation != nil {
		lines = append(lines, fmt.Sprintf("You agreed to carry a letter to %s (%d segments, pays %d).",
			out.Obligation.RecipientID, out.Obligation.DeadlineSegments, out.Obligation.Payment))
	}
	lines = append(lines, "Type /new to start another conversation.")
	m.addLine(chat.ChatRoleSystem, strings.Join(lines, "\n"))
}

func describeObligations(queue []*obligation.Obligation) string {
	if len(queue) == 0 {
		return "You carry no letters."
	}
	var b strings.Builder
	b.WriteString("Letters, most urgent first:")
	for _, o := range queue {
		fmt.Fprintf(&b, "\n%d. %s → %s, tier %d, %d segments, pays %d",
			o.Priority+1, o.SenderID, o.RecipientID, o.Tier, o.DeadlineSegments, o.Payment)
	}
	return b.String()
}

func (m ConsoleUI) updateSelectModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case sessionStartedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.session = msg.session
		m.showSelectModal = false
		m.layout()
		m.recordTurn(msg.turn)
		m.writeChatContent()
		m.refreshMeta()
		m.textarea.Focus()
		m.ready = true
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedNPC > 0 {
				m.selectedNPC--
			}
		case tea.KeyDown:
			if m.selectedNPC < len(m.npcs)-1 {
				m.selectedNPC++
			}
		case tea.KeyTab:
			m.selectedKind = (m.selectedKind + 1) % len(kinds)
		case tea.KeyEnter:
			if len(m.npcs) > 0 {
				m.loading = true
				m.err = nil
				return m, m.backend.start(m.npcs[m.selectedNPC].ID, kinds[m.selectedKind])
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

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
				if m.showSelectModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
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
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Leaving mid-conversation counts as walking away.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSelectModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loading {
		content.WriteString(modalTitleStyle.Render("Starting Conversation..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Shuffling the deck..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Who do you want to talk to?"))
		content.WriteString("\n\n")

		for i, npc := range m.npcs {
			label := fmt.Sprintf("%s (%s)", npc.Name, narrative.Title(string(npc.Personality)))
			if i == m.selectedNPC {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString("Purpose: " + titleStyle.Render(narrative.Title(string(kinds[m.selectedKind]))))
		content.WriteString("\n\n")
		if m.err != nil {
			content.WriteString(errorStyle.Render(m.err.Error()) + "\n\n")
		}
		content.WriteString(promptStyle.Render("↑/↓ to choose, Tab to change purpose, Enter to begin"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showSelectModal {
		return m.renderSelectModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
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
