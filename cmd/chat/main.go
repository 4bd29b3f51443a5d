package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"data-chat-be/internal/constant"
	"data-chat-be/pkg/conversation"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

func main() {
	baseURL := flag.String("api", "http://localhost:8000", "data chat API base URL")
	outDir := flag.String("out", "charts", "directory for returned charts")
	flag.Parse()

	sessionID := uuid.NewString()
	client := newAPIClient(strings.TrimRight(*baseURL, "/"), sessionID)
	conv := conversation.New()

	color.Cyan("📊 Data Chat Agent")
	fmt.Printf("Ask questions about the dataset (session %s).\n", sessionID)
	printHelp()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		color.New(color.FgHiBlue, color.Bold).Print("\nyou> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		query := line
		switch {
		case line == "/quit" || line == "/exit":
			return
		case line == "/help":
			printHelp()
			continue
		case line == "/suggest":
			for i, q := range constant.QuickQueries {
				fmt.Printf("  /%d  %s: %s\n", i+1, q.Label, q.Query)
			}
			continue
		case line == "/reset":
			if err := client.reset(); err != nil {
				reportError(err)
				continue
			}
			conv.Reset()
			color.Green("Conversation cleared.")
			continue
		case line == "/history":
			printHistory(conv, *outDir)
			continue
		case strings.HasPrefix(line, "/"):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "/"))
			if err != nil || n < 1 || n > len(constant.QuickQueries) {
				color.Yellow("Unknown command %q. Type /help.", line)
				continue
			}
			query = constant.QuickQueries[n-1].Query
			fmt.Printf("you> %s\n", query)
		}

		conv.Append(conversation.Turn{Role: conversation.RoleUser, Text: query})

		color.New(color.Faint).Println("Agent is thinking and writing code...")
		res, err := client.ask(query)
		if err != nil {
			reportError(err)
			continue
		}

		conv.Append(conversation.Turn{Role: conversation.RoleAssistant, Text: res.Response, Image: res.Image})
		color.Green("agent> %s", res.Response)
		if res.Image != nil {
			files, err := saveCharts(*outDir, conv.RenderAll())
			if err != nil {
				color.Red("Could not save chart: %v", err)
			} else if len(files) > 0 {
				abs, _ := filepath.Abs(files[len(files)-1])
				color.Magenta("chart saved to %s", abs)
			}
		}
	}
}

func printHelp() {
	fmt.Println("Commands: /suggest, /1../3 quick queries, /history, /reset, /quit")
}

func printHistory(conv *conversation.Conversation, outDir string) {
	turns := conv.RenderAll()
	if len(turns) == 0 {
		fmt.Println("(no messages yet)")
		return
	}
	files, err := saveCharts(outDir, turns)
	if err != nil {
		color.Red("Could not save charts: %v", err)
	}
	charts := 0
	for i, t := range turns {
		label := color.New(color.FgHiBlue).Sprint("you")
		if t.Role == conversation.RoleAssistant {
			label = color.New(color.FgGreen).Sprint("agent")
		}
		fmt.Printf("[%d] %s> %s\n", i+1, label, t.Text)
		if len(t.Image) > 0 && charts < len(files) {
			fmt.Printf("     chart: %s\n", files[charts])
			charts++
		}
	}
}

func reportError(err error) {
	if errors.Is(err, ErrUnavailable) {
		color.New(color.BgRed, color.FgWhite, color.Bold).Println(" SERVICE UNAVAILABLE ")
		color.Red("Could not reach the API. Is the backend running? (%v)", err)
		return
	}
	color.Red("Error: %v", err)
}
