// users is a terminal screen for listing, adding, editing and deleting
// the records of a remote users collection.
//
// Every change is sent to the collection as a single request; the list on
// screen is updated only once the collection has accepted it. Failed
// requests are written to the log file and otherwise ignored.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"rollcall-users/client"
	"rollcall-users/config"
	"rollcall-users/screen"
	"rollcall-users/tui"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotenv(); err != nil {
		return err
	}
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	flagSet := pflag.NewFlagSet("users", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "users collection URL")
	flagSet.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "file request failures are logged to")
	flagSet.StringVar(&cfg.ExportPath, "export", cfg.ExportPath, "xlsx file the x key writes")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = client.DefaultBaseURL
	}

	// The terminal belongs to the screen; logging goes to a file.
	logFile, err := tea.LogToFile(cfg.LogFile, "users")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	prompts := tui.NewPromptConfirmer()
	controller := screen.NewController(client.New(cfg.BaseURL), prompts)
	model := tui.NewModel(context.Background(), controller, prompts, cfg.ExportPath)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run screen: %w", err)
	}
	return nil
}
