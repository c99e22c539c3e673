package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/szaher/kontra/internal/config"
	"github.com/szaher/kontra/internal/conversation"
	"github.com/szaher/kontra/internal/debate"
	"github.com/szaher/kontra/internal/llm"
	"github.com/szaher/kontra/internal/store"
	"github.com/szaher/kontra/internal/telemetry"
)

func newChatCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Debate locally without the HTTP server",
		Long:  "Run debate turns against an in-memory engine. With --input, a single turn; otherwise an interactive session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			engineOpts := []debate.EngineOption{
				debate.WithMaxTurns(cfg.Conversation.MaxTurns),
				debate.WithLogger(telemetry.NewLogger(os.Stderr, logLevel(cfg.LogLevel))),
			}
			if cfg.Generation.Model != "" {
				client := llm.NewClientForModel(cfg.Generation.Model)
				engineOpts = append(engineOpts, debate.WithGenerator(debate.NewResponder(client,
					debate.WithModel(cfg.Generation.Model),
					debate.WithMaxTokens(cfg.Generation.MaxTokens),
					debate.WithTemperature(cfg.Generation.Temperature),
					debate.WithTimeout(cfg.GenerationTimeout()),
				)))
			}
			cs := conversation.NewStore(store.NewMemory(), cfg.TTL())
			engine := debate.NewEngine(cs, engineOpts...)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if input != "" {
				res, err := engine.ProcessMessage(ctx, "", input)
				if err != nil {
					return err
				}
				fmt.Println(res.Turns[len(res.Turns)-1].Text)
				if verbose {
					fmt.Fprintf(os.Stderr, "\n[topic: %s | stance: %s]\n", res.Topic, res.Stance)
				}
				return nil
			}

			return interactiveChat(ctx, engine)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Single message to debate (one-shot)")
	return cmd
}

func interactiveChat(ctx context.Context, engine *debate.Engine) error {
	fmt.Println("State a position and kontra will argue the opposite. Empty line or Ctrl-C to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	id := ""
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return nil
		}

		turnCtx, cancel := context.WithTimeout(ctx, time.Minute)
		res, err := engine.ProcessMessage(turnCtx, id, line)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		id = res.ConversationID

		fmt.Printf("kontra> %s\n\n", res.Turns[len(res.Turns)-1].Text)
	}
}
