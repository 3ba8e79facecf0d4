//go:build ignore

// Interactive chat with the configured persona, without the HTTP server or a
// database. History is kept in memory and sent with every message.
// Usage: go run scripts/persona_cli.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"parley/internal/capabilities"
	"parley/internal/config"
	"parley/internal/domain/models/llm"
	llmDomain "parley/internal/domain/services/llm"
	"parley/internal/persona"
	llmService "parley/internal/service/llm"
	"parley/internal/service/llm/generation"
	"parley/internal/service/llm/history"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

type CLI struct {
	ctx        context.Context
	generation llmDomain.GenerationService
	name       string
	turns      []llm.Turn
	scanner    *bufio.Scanner
}

// allowAll stands in for the ownership check; the CLI never sends a chat id
type allowAll struct{}

func (allowAll) CanAccessChat(context.Context, string, string) error { return nil }

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	cfg.LogDir = ""

	logger, err := config.NewLogger(cfg)
	if err != nil {
		fmt.Printf("Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Debug {
		logger = zap.NewNop()
	}

	catalog, err := capabilities.NewRegistry()
	if err != nil {
		fail(err)
	}
	p, err := persona.Load(cfg.PersonaFile)
	if err != nil {
		fail(err)
	}
	setup, err := llmService.SetupGenerator(cfg, catalog, p, logger)
	if err != nil {
		fail(err)
	}

	cli := &CLI{
		ctx:        context.Background(),
		generation: generation.NewService(setup.Generator, allowAll{}, cfg.StoreTimeout, cfg.GenerationTimeout, logger),
		name:       p.Name,
		scanner:    bufio.NewScanner(os.Stdin),
	}
	cli.scanner.Buffer(make([]byte, 0, 64*1024), config.MaxMessageLength*4)

	fmt.Printf("%sTalking to %s via %s/%s%s\n", colorCyan, p.Name, setup.Model.Provider, setup.Model.Model, colorReset)
	fmt.Printf("%sCommands: /history /export /reset /quit%s\n\n", colorBlue, colorReset)
	cli.run()
}

func (cli *CLI) run() {
	for {
		fmt.Printf("%syou>%s ", colorGreen, colorReset)
		if !cli.scanner.Scan() {
			return
		}
		line := strings.TrimSpace(cli.scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			fmt.Printf("%s✓ Goodbye!%s\n", colorGreen, colorReset)
			return
		case "/reset":
			cli.turns = nil
			fmt.Printf("%shistory cleared%s\n", colorYellow, colorReset)
		case "/history":
			cli.showHistory()
		case "/export":
			cli.export()
		default:
			cli.send(line)
		}
	}
}

func (cli *CLI) send(message string) {
	resp, err := cli.generation.Generate(cli.ctx, &llmDomain.GenerateRequest{
		UserID:  "cli",
		Message: message,
		History: cli.turns,
	})
	if err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}

	fmt.Printf("%s%s>%s %s\n\n", colorCyan, strings.ToLower(cli.name), colorReset, resp.Response)

	// Stored in the session envelope, the way a browser client keeps it
	user, reply := message, resp.Response
	cli.turns = append(cli.turns,
		llm.Turn{Role: llm.RoleUser, Parts: []llm.Part{{Text: user}}},
		llm.Turn{Role: history.RoleModel, Parts: []llm.Part{{Text: reply}}},
	)
}

func (cli *CLI) showHistory() {
	messages, err := history.Normalize(cli.turns)
	if err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	if len(messages) == 0 {
		fmt.Printf("%s(empty)%s\n", colorYellow, colorReset)
		return
	}
	for i, m := range messages {
		fmt.Printf("%s%3d %-9s%s %s\n", colorBlue, i+1, m.Role, colorReset, m.Content)
	}
}

// export prints the history as a PUT /api/chats/{id} body
func (cli *CLI) export() {
	messages, err := history.Normalize(cli.turns)
	if err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	body, _ := json.MarshalIndent(map[string]any{
		"messages": history.ToFlat(messages, history.CanonicalRoles),
	}, "", "  ")
	fmt.Println(string(body))
}

func fail(err error) {
	fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
	os.Exit(1)
}
