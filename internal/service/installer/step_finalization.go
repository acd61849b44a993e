package installer

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/warden/internal/config"
)

// FinalizationStep fills in defaults the wizard does not ask for
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	defaults := map[string]string{
		"WARDEN_STORE":      config.StoreJSON,
		"WARDEN_UTC_OFFSET": "3",
		"WARDEN_DAILY_CRON": "0 0 * * *",
		"WARDEN_DEBUG":      "0",
	}
	for k, v := range defaults {
		if state.EnvVars[k] == "" {
			state.EnvVars[k] = v
		}
	}

	// Signal completion
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}
