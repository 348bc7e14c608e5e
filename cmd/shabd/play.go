package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/devpatel/shabd-ramat/internal/client"
	"github.com/devpatel/shabd-ramat/internal/engine"
)

const usage = `commands:
  local            start a single-device game
  create           create a relay game and start it
  join CODE        join an existing relay game
  say TEAM WORD    submit a word for team A or B
  end              end the game and show the winner
  board            show scores and word lists
  restart          reset everything
  quit             exit`

func run(ctx context.Context, cfg *Config) error {
	ctrl := client.NewController(cfg.name)
	setup := &engine.Setup{LetterA: cfg.letterA, LetterB: cfg.letterB}

	// Broadcast-driven redraws for relay games.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ctrl.Updates():
				if ctrl.Mode() == client.ModeRelay {
					printScores(ctrl.State())
				}
			}
		}
	}()

	fmt.Println(usage)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "local":
			if err := ctrl.Start(ctx, client.ModeLocal, setup, ""); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("game on:", cfg.letterA, "vs", cfg.letterB)

		case "create", "join":
			code := ""
			if fields[0] == "join" {
				if len(fields) < 2 {
					fmt.Println("usage: join CODE")
					continue
				}
				code = strings.ToUpper(fields[1])
			}
			transport, err := client.Dial(ctx, cfg.server, ctrl.HandleBroadcast)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			ctrl.SetTransport(transport)
			if err := ctrl.Start(ctx, client.ModeRelay, setup, code); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("game code:", ctrl.GameCode(), "- you are team", ctrl.Team())

		case "say":
			if len(fields) < 3 {
				fmt.Println("usage: say TEAM WORD")
				continue
			}
			team := engine.TeamID(strings.ToUpper(fields[1]))
			word := strings.Join(fields[2:], " ")
			validation, err := ctrl.SubmitWord(ctx, word, team)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if validation.IsValid {
				fmt.Println("✓", word)
			} else {
				fmt.Println("✗", validation.Message)
			}

		case "end":
			ctrl.EndGame()
			fmt.Println(client.RenderResults(ctrl.State()))

		case "board":
			fmt.Println(client.RenderResults(ctrl.State()))

		case "restart":
			ctrl.Restart()
			fmt.Println("reset")

		case "quit", "exit":
			return nil

		default:
			fmt.Println(usage)
		}
	}
}

func printScores(s engine.State) {
	a, b := s.Teams[engine.TeamA], s.Teams[engine.TeamB]
	fmt.Printf("\r[%s %d : %d %s] turn: %s\n", a.Letter, a.Score, b.Score, b.Letter, s.CurrentTeam)
}
