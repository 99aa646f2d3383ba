package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stillpath/journey/internal/tui/app"
	"github.com/stillpath/journey/internal/tui/client"
)

func main() {
	wsURL := flag.String("url", "ws://127.0.0.1:8080/ws", "WebSocket URL of the journey server")
	token := flag.String("token", os.Getenv("JOURNEY_SERVER_AUTH_TOKEN"), "Auth token (if the server requires it)")
	userID := flag.String("user", "", "Player ID; a new player is enrolled when empty")
	start := flag.Int("start", 1, "Starting level (1-5) for a new player")
	logPath := flag.String("log", "journey-tui.log", "Debug log file")
	flag.Parse()

	f, err := tea.LogToFile(*logPath, "journey")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	httpClient := client.NewHTTPClient(deriveHTTPBase(*wsURL), *token)

	if *userID == "" {
		p, err := httpClient.Enroll(*start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: enroll: %v\n", err)
			os.Exit(1)
		}
		*userID = p.UserID
		fmt.Printf("Enrolled new player %s at level %d. Resume with -user %s\n", p.UserID, p.Level, p.UserID)
		log.Printf("enrolled %s at level %d", p.UserID, p.Level)
	}

	ws := client.NewWSClient(*wsURL, *token, *userID)
	defer ws.Close()

	m := app.New(ws, httpClient, *userID)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// deriveHTTPBase converts ws://host:port/ws → http://host:port
func deriveHTTPBase(wsURL string) string {
	u, err := url.Parse(wsURL)
	if err != nil {
		return "http://127.0.0.1:8080"
	}
	scheme := "http"
	if strings.HasPrefix(u.Scheme, "wss") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, u.Host)
}
