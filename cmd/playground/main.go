package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alanmaizon/qalam/internal/config"
	"github.com/alanmaizon/qalam/internal/llm"
	"github.com/alanmaizon/qalam/internal/playground"
	"github.com/alanmaizon/qalam/internal/settings"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	initial := flag.String("text", "", "initial document text")
	target := flag.String("target", "English", "target language for translate and convert")
	logPath := flag.String("log", os.Getenv("QALAM_PLAYGROUND_LOG"), "write logs to this file instead of discarding them")
	flag.Parse()

	// The alternate screen owns stdout, so log lines go to a file or nowhere.
	if *logPath != "" {
		logFile, err := tea.LogToFile(*logPath, "qalam")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer logFile.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	store, err := settings.OpenFileStore(config.SettingsPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open settings: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	cfg := config.Load(store)
	model := playground.New(playground.Config{
		Generator:      llm.NewGenerator(cfg.LLM),
		Policy:         config.PolicySource(store),
		InitialText:    *initial,
		TargetLanguage: *target,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "playground: %v\n", err)
		os.Exit(1)
	}
}
