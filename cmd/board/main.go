package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"dia-relay/cmd/board/ui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	host := flag.String("host", "127.0.0.1", "hub HTTP host")
	port := flag.Int("port", 8000, "hub HTTP port")
	user := flag.String("user", "", "operator username; enables the command form")
	password := flag.String("password", "", "operator password")
	refresh := flag.Duration("refresh", 10*time.Second, "table refresh interval (0 disables)")
	days := flag.Int("days", 7, "days of dia history to fetch")
	flag.Parse()

	client := ui.NewClient(fmt.Sprintf("http://%s:%d", *host, *port))
	if *user != "" {
		if err := client.Login(*user, *password); err != nil {
			fmt.Fprintf(os.Stderr, "board: %v\n", err)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(ui.NewRootModel(client, *refresh, *days, client.HasToken()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "board: %v\n", err)
		os.Exit(1)
	}
}
