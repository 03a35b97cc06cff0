package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fbmac/flarumbot/internal/llm"
	"github.com/fbmac/flarumbot/internal/persona"
)

// menuItem represents a single configurable option in the TUI.
type menuItem struct {
	label    string
	value    string
	options  []menuOption
	required bool
	editing  bool
	cursor   int // cursor within options when editing
}

type menuOption struct {
	label string
	value string
}

// menuState tracks which phase the TUI is in.
type menuState int

const (
	stateMenu menuState = iota
	stateEditing
)

// tuiModel is the Bubble Tea model for the interactive menu.
type tuiModel struct {
	items     []menuItem
	cursor    int
	state     menuState
	width     int
	err       error
	confirmed bool
	cancelled bool
}

// style constants
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginBottom(1)

	menuLabelStyle = lipgloss.NewStyle().
			Width(14).
			Align(lipgloss.Right).
			MarginRight(2)

	menuValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	menuValueDimStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#555555")).
				Italic(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	requiredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	optionStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	selectedOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#04B575")).
				Bold(true).
				PaddingLeft(2)

	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 3)

	buttonDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Padding(0, 3)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	headerBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#7D56F4")).
			MarginBottom(1).
			PaddingBottom(0)
)

// keyMap holds the bindings of the menu and the option picker. Text fields
// read raw keys so letters can be typed.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

const (
	idxLanguage   = 0
	idxPersona    = 1
	idxMode       = 2
	idxDiscussion = 3
	idxInspire    = 4
	idxModel      = 5
	idxRun        = 6
)

const (
	modeAuto   = "auto"
	modeCreate = "create"
	modeReply  = "reply"
)

func languageOptions() []menuOption {
	var opts []menuOption
	for _, lang := range persona.Languages() {
		opts = append(opts, menuOption{label: persona.LocaleFor(string(lang)).Label, value: string(lang)})
	}
	return opts
}

// personaOptions lists the catalog of lang, led by a random pick.
func personaOptions(lang string) []menuOption {
	opts := []menuOption{{label: "Random", value: "0"}}
	for _, p := range persona.LocaleFor(lang).Personas {
		opts = append(opts, menuOption{label: fmt.Sprintf("%s (%d)", p.Name, p.ID), value: strconv.Itoa(p.ID)})
	}
	return opts
}

func modelOptions() []menuOption {
	opts := []menuOption{{label: "Configured default (AI_MODEL or " + llm.DefaultModel + ")", value: ""}}
	for _, alias := range llm.Aliases() {
		opts = append(opts, menuOption{label: fmt.Sprintf("%s (%s)", alias, llm.ProviderFor(alias)), value: alias})
	}
	return opts
}

func buildMenuItems() []menuItem {
	lang := flagLanguage
	if !persona.IsValidLanguage(lang) {
		lang = string(persona.English)
	}
	mode := modeAuto
	switch {
	case flagCreateNew:
		mode = modeCreate
	case flagDiscussionID > 0:
		mode = modeReply
	}
	discussion := ""
	if flagDiscussionID > 0 {
		discussion = strconv.Itoa(flagDiscussionID)
	}

	items := []menuItem{
		{label: "Language", value: lang, options: languageOptions(), required: true},
		{label: "Persona", value: strconv.Itoa(flagUserID), options: personaOptions(lang)},
		{label: "Mode", value: mode, options: []menuOption{
			{label: "Auto (dice roll, reply or new topic)", value: modeAuto},
			{label: "New topic", value: modeCreate},
			{label: "Reply to discussion", value: modeReply},
		}},
		{label: "Discussion ID", value: discussion},
		{label: "Inspiration", value: flagInspire},
		{label: "Model", value: flagModel, options: modelOptions()},
		{label: "Run"},
	}
	for i := range items {
		items[i].cursor = optionIndex(items[i].options, items[i].value)
	}
	return items
}

func optionIndex(opts []menuOption, value string) int {
	for i, opt := range opts {
		if opt.value == value {
			return i
		}
	}
	return 0
}

func initialTUIModel() tuiModel {
	return tuiModel{
		items:  buildMenuItems(),
		cursor: idxLanguage,
		state:  stateMenu,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) isTextInput(idx int) bool {
	return idx == idxDiscussion || idx == idxInspire
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateMenu:
			return m.updateMenu(msg)
		case stateEditing:
			return m.updateEditing(msg)
		}
	}
	return m, nil
}

// validate checks the combination of selections before running.
func (m tuiModel) validate() error {
	mode := m.items[idxMode].value
	discussion := m.items[idxDiscussion].value
	if mode == modeReply {
		id, err := strconv.Atoi(discussion)
		if err != nil || id <= 0 {
			return fmt.Errorf("discussion id must be a positive number in reply mode")
		}
	}
	if m.items[idxInspire].value != "" && mode != modeCreate {
		return fmt.Errorf("inspiration is only used for new topics")
	}
	return nil
}

func (m tuiModel) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.cancelled = true
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Select):
		if m.cursor == idxRun {
			if err := m.validate(); err != nil {
				m.err = err
				return m, nil
			}
			m.confirmed = true
			return m, tea.Quit
		}

		if m.isTextInput(m.cursor) || len(m.items[m.cursor].options) > 0 {
			m.state = stateEditing
			m.items[m.cursor].editing = true
			m.err = nil
			return m, nil
		}
	}
	return m, nil
}

func (m tuiModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx := m.cursor
	item := &m.items[idx]

	if m.isTextInput(idx) {
		switch msg.String() {
		case "enter":
			item.editing = false
			m.state = stateMenu
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil
		case "esc":
			item.editing = false
			m.state = stateMenu
			return m, nil
		case "backspace":
			if len(item.value) > 0 {
				item.value = item.value[:len(item.value)-1]
			}
			return m, nil
		case "ctrl+u":
			item.value = ""
			return m, nil
		default:
			switch msg.Type {
			case tea.KeyRunes:
				item.value += string(msg.Runes)
			case tea.KeySpace:
				item.value += " "
			}
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, keys.Select):
		if item.cursor >= 0 && item.cursor < len(item.options) {
			item.value = item.options[item.cursor].value
		}
		item.editing = false
		m.state = stateMenu

		// Persona ids differ per language.
		if idx == idxLanguage {
			personas := &m.items[idxPersona]
			personas.options = personaOptions(item.value)
			personas.cursor = optionIndex(personas.options, personas.value)
			if personas.options[personas.cursor].value != personas.value {
				personas.value = "0"
			}
		}

		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, keys.Back):
		item.editing = false
		m.state = stateMenu
		return m, nil

	case key.Matches(msg, keys.Up):
		if item.cursor > 0 {
			item.cursor--
		}

	case key.Matches(msg, keys.Down):
		if item.cursor < len(item.options)-1 {
			item.cursor++
		}
	}
	return m, nil
}

func (m tuiModel) View() string {
	var b strings.Builder

	title := titleStyle.Render("Flarumbot")
	b.WriteString(headerBorder.Render(title))
	b.WriteString("\n")

	for i, item := range m.items {
		isActive := m.cursor == i

		if i == idxRun {
			b.WriteString("\n")
			if isActive {
				b.WriteString("  " + buttonStyle.Render(" Run "))
			} else {
				b.WriteString("  " + buttonDimStyle.Render(" Run "))
			}
			b.WriteString("\n")
			continue
		}

		cursor := "  "
		if isActive {
			cursor = cursorStyle.Render("> ")
		}

		label := item.label
		if item.required {
			label = label + requiredStyle.Render("*")
		}
		renderedLabel := menuLabelStyle.Render(label)

		var renderedValue string
		if item.editing && m.isTextInput(i) {
			renderedValue = menuValueStyle.Render(item.value + "_")
		} else if item.value == "" {
			placeholder := "(not set)"
			switch i {
			case idxDiscussion:
				placeholder = "(reply mode only)"
			case idxInspire:
				placeholder = "(optional URL or file, new topics only)"
			case idxModel:
				placeholder = item.options[0].label
			}
			renderedValue = menuValueDimStyle.Render(placeholder)
		} else {
			displayVal := item.value
			for _, opt := range item.options {
				if opt.value == item.value {
					displayVal = opt.label
					break
				}
			}
			renderedValue = menuValueStyle.Render(displayVal)
		}

		b.WriteString(cursor + renderedLabel + " " + renderedValue + "\n")

		if item.editing && len(item.options) > 0 && !m.isTextInput(i) {
			for j, opt := range item.options {
				if j == item.cursor {
					b.WriteString(selectedOptionStyle.Render("> "+opt.label) + "\n")
				} else {
					b.WriteString(optionStyle.Render("  "+opt.label) + "\n")
				}
			}
		}
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}

	h := help.New()
	switch {
	case m.state == stateMenu:
		b.WriteString(helpStyle.Render("  " + h.ShortHelpView([]key.Binding{keys.Up, keys.Down, keys.Select, keys.Quit})))
	case m.isTextInput(m.cursor):
		b.WriteString(helpStyle.Render("  type value | enter to confirm | esc to cancel | ctrl+u to clear"))
	default:
		b.WriteString(helpStyle.Render("  " + h.ShortHelpView([]key.Binding{keys.Up, keys.Down, keys.Select, keys.Back})))
	}
	b.WriteString("\n")

	return b.String()
}

// applySelections copies a confirmed wizard into the command flags.
func applySelections(final tuiModel) {
	flagLanguage = final.items[idxLanguage].value
	flagUserID, _ = strconv.Atoi(final.items[idxPersona].value)
	flagModel = final.items[idxModel].value
	flagInspire = strings.TrimSpace(final.items[idxInspire].value)

	flagCreateNew = false
	flagDiscussionID = 0
	switch final.items[idxMode].value {
	case modeCreate:
		flagCreateNew = true
	case modeReply:
		flagDiscussionID, _ = strconv.Atoi(final.items[idxDiscussion].value)
	}
}

func runInteractiveSetup() error {
	m := initialTUIModel()

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tuiModel)
	if final.cancelled {
		return fmt.Errorf("cancelled")
	}
	if !final.confirmed {
		return fmt.Errorf("run cancelled")
	}

	applySelections(final)
	return nil
}
