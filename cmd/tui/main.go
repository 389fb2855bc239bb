package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/festmap/festmap/backend-go/internal/config"
	"github.com/festmap/festmap/backend-go/internal/saves"
	"github.com/festmap/festmap/backend-go/internal/store"
	"github.com/festmap/festmap/backend-go/internal/tui"
)

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The terminal belongs to the UI; logs go to a file.
	logFile, err := tea.LogToFile("festmap-tui.log", "")
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.Level()})))

	st, err := store.Open(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	m := tui.New(tui.Options{
		View:         cfg.InitialView(),
		HistoryLimit: cfg.HistoryLimit,
		Saves:        saves.NewService(st),
		Clipboard:    systemClipboard{},
		ExportDir:    cfg.ExportDir,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
