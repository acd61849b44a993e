package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/warden/internal/storage"
)

// SaveEnvStep writes the collected configuration to .env file
type SaveEnvStep struct {
	err   error
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}

	if err := writeEnv(state); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil // Signal completion
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// writeEnv creates <runtime>/.env. An existing file is never overwritten.
func writeEnv(state *InstallState) error {
	if err := os.MkdirAll(state.RuntimePath, 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(state.RuntimePath, ".env")
	if _, err := os.Stat(envPath); err == nil {
		return fmt.Errorf(".env file already exists at %s", envPath)
	}

	keys := make([]string, 0, len(state.EnvVars))
	for k := range state.EnvVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var content strings.Builder
	for _, k := range keys {
		content.WriteString(fmt.Sprintf("%s=%s\n", k, state.EnvVars[k]))
	}

	return os.WriteFile(envPath, []byte(content.String()), 0600)
}

// InitializeStoreStep creates empty datasets in the selected backend
type InitializeStoreStep struct {
	ctx  context.Context
	err  error
	done bool
}

func NewInitializeStoreStep(ctx context.Context) Step {
	return &InitializeStoreStep{ctx: ctx}
}

func (s *InitializeStoreStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *InitializeStoreStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.done {
		return nil, nil
	}

	if err := initStore(s.ctx, state); err != nil {
		s.err = err
		return s, nil
	}

	s.done = true
	return nil, nil
}

func (s *InitializeStoreStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.done {
		return "Activity store initialized successfully!\n"
	}
	return "Initializing activity store...\n"
}

func initStore(ctx context.Context, state *InstallState) error {
	store, closeFn, err := storage.Open(ctx, state.EnvVars["WARDEN_STORE"], state.RuntimePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer closeFn()

	return storage.Ensure(ctx, store, storage.Datasets...)
}
