package installer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep collects one line of text, validates it and stores it under key.
type InputStep struct {
	prompt   string
	key      string
	input    textinput.Model
	validate func(string) (string, error)
	err      error
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

func NewTelegramTokenStep() Step {
	return &InputStep{
		prompt: "Enter your Telegram Bot Token:",
		key:    "WARDEN_TELEGRAM_TOKEN",
		input:  newInput("123456789:ABCDEF...", true),
		validate: func(s string) (string, error) {
			s = strings.TrimSpace(s)
			if !strings.Contains(s, ":") {
				return "", fmt.Errorf("token must look like <id>:<secret>")
			}
			return s, nil
		},
	}
}

func NewAllowListStep() Step {
	return &InputStep{
		prompt:   "Enter the Telegram user ids allowed to run /promote, /demote, /snapshot and /weekly (comma-separated):",
		key:      "WARDEN_ALLOWLIST",
		input:    newInput("666580112,1131995068", false),
		validate: ParseAllowList,
	}
}

func NewOffsetStep() Step {
	ti := newInput("3", false)
	ti.SetValue("3")
	return &InputStep{
		prompt:   "Enter the UTC offset in hours that defines local midnight:",
		key:      "WARDEN_UTC_OFFSET",
		input:    ti,
		validate: ParseOffset,
	}
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			value, err := s.validate(s.input.Value())
			if err != nil {
				s.err = err
				return s, nil
			}
			state.EnvVars[s.key] = value
			return nil, nil
		}
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	view := s.prompt + "\n\n" + s.input.View() + "\n\n"
	if s.err != nil {
		view += errorStyle.Render(s.err.Error()) + "\n"
	}
	return view + "(press enter to confirm)\n"
}

// ParseAllowList normalizes a comma-separated list of user ids.
func ParseAllowList(s string) (string, error) {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, err := strconv.ParseInt(part, 10, 64); err != nil {
			return "", fmt.Errorf("%q is not a user id", part)
		}
		ids = append(ids, part)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("at least one user id is required")
	}
	return strings.Join(ids, ","), nil
}

func ParseOffset(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "3", nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return "", fmt.Errorf("%q is not a whole number of hours", s)
	}
	if n < -12 || n > 14 {
		return "", fmt.Errorf("offset must be between -12 and 14")
	}
	return strconv.Itoa(n), nil
}
