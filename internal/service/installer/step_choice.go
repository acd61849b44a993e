package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/warden/internal/config"
)

type choice struct {
	value string
	label string
}

// ChoiceStep picks one value from a fixed list and stores it under key.
type ChoiceStep struct {
	prompt  string
	key     string
	choices []choice
	cursor  int
}

func NewStoreStep() Step {
	return &ChoiceStep{
		prompt: "Select where activity data is kept:",
		key:    "WARDEN_STORE",
		choices: []choice{
			{value: config.StoreJSON, label: "JSON files (activity.json, user_cache.json, used_name.json)"},
			{value: config.StoreSQLite, label: "SQLite database (warden.db)"},
		},
	}
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.EnvVars[s.key] = s.choices[s.cursor].value
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.prompt + "\n\n")
	for i, c := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", c.label)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", c.label)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
