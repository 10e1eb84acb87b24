// fala: interactive conversation client for the tutor backend.
//
// Type a sentence and get a tutor reply; slash commands control the
// conversation mode, model pinning and recording. Streaming mode
// dispatches turns over the persistent websocket channel instead of
// direct HTTP calls.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/falalabs/go-fala/internal/config"
	"github.com/falalabs/go-fala/internal/log"
	"github.com/falalabs/go-fala/pkg/audioio"
	"github.com/falalabs/go-fala/pkg/backend"
	"github.com/falalabs/go-fala/pkg/capture"
	"github.com/falalabs/go-fala/pkg/channel"
	"github.com/falalabs/go-fala/pkg/models"
	"github.com/falalabs/go-fala/pkg/playback"
	"github.com/falalabs/go-fala/pkg/tutor"
)

var (
	serverURL = flag.String("server", config.ServerURL(), "tutor backend URL")
	wsURL     = flag.String("ws", config.WebSocketURL(), "tutor backend websocket URL")
	mode      = flag.String("mode", "balanced", "conversation mode (speed, balanced, quality)")
	stream    = flag.Bool("stream", false, "dispatch turns over the websocket channel")
	language  = flag.String("language", "en", "transcription language hint")
	speak     = flag.Bool("speak", false, "play synthesized replies")
	logLevel  = flag.String("log-level", config.LogLevel(), "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	log.Init(*logLevel)

	m, err := models.ParseMode(*mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fala: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	svc := backend.NewClient(
		backend.WithBaseURL(*serverURL),
		backend.WithLanguage(*language),
		backend.WithLogger(log.L()),
	)
	defer svc.Close()

	opts := []tutor.Option{
		tutor.WithMode(m),
		tutor.WithLanguage(*language),
		tutor.WithSynthesis(*speak),
		tutor.WithLogger(log.L()),
	}

	var ch *channel.Manager
	if *stream {
		ch = channel.New(channel.WithURL(*wsURL), channel.WithLogger(log.L()))
		opts = append(opts, tutor.WithStreaming(ch))
	}

	audioCfg := audioio.DefaultConfig()
	mic := capture.New(audioio.NewMockSource(audioCfg, log.L()), log.L())
	defer mic.Close()

	if *speak {
		player := playback.New(audioio.NewMockSink(audioCfg, log.L()), log.L())
		defer player.Close()
		opts = append(opts, tutor.WithPlayer(player))
	}

	pipeline := tutor.NewPipeline(svc, opts...)
	if *stream {
		// Streamed replies land asynchronously; direct turns print
		// from the submit path instead.
		pipeline.OnTurnComplete(func(t tutor.Turn) {
			fmt.Printf("tutor [%s, %.2fs]: %s\n", t.Model, t.LatencySeconds, t.AssistantText)
		})
		pipeline.OnTurnError(func(id string, err error) {
			fmt.Printf("turn failed: %v\n", err)
		})
	}

	if err := pipeline.RefreshCatalog(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fala: backend unreachable at %s: %v\n", *serverURL, err)
		os.Exit(1)
	}

	if ch != nil {
		if err := ch.Connect(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "fala: %v\n", err)
			os.Exit(1)
		}
		defer ch.Close()
	}

	fmt.Printf("connected to %s (model %s, mode %s)\n", *serverURL, pipeline.CurrentModel(), pipeline.Mode())
	fmt.Println("type a message, or /help for commands")

	repl(ctx, pipeline, svc, mic)
}

func repl(ctx context.Context, p *tutor.Pipeline, svc backend.Service, mic *capture.Controller) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := command(ctx, p, svc, mic, line); quit {
				return
			}
			continue
		}

		submit(func() (*tutor.Turn, error) { return p.SubmitText(ctx, line) }, p)
	}
}

// command handles one slash command. Returns true to exit.
func command(ctx context.Context, p *tutor.Pipeline, svc backend.Service, mic *capture.Controller, line string) bool {
	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "/help":
		fmt.Println("/models        list models")
		fmt.Println("/mode <m>      set mode: speed, balanced, quality")
		fmt.Println("/pin <model>   pin a model")
		fmt.Println("/unpin         resume automatic selection")
		fmt.Println("/rec           start recording")
		fmt.Println("/stop          stop recording and submit")
		fmt.Println("/stats         show rolling stats")
		fmt.Println("/reset         clear the conversation")
		fmt.Println("/quit          exit")

	case "/models":
		resp, err := svc.ListModels(ctx)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
		for _, m := range resp.Models {
			marker := " "
			if m.ID == resp.Current {
				marker = "*"
			}
			fmt.Printf("%s %-14s %-6s speed %d quality %d\n", marker, m.ID, m.Size, m.SpeedRating, m.QualityRating)
		}

	case "/mode":
		m, err := models.ParseMode(arg)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
		p.SetMode(m)
		fmt.Printf("mode: %s\n", m)

	case "/pin":
		if arg == "" {
			fmt.Println("usage: /pin <model>")
			break
		}
		if err := p.PinModel(ctx, arg); err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
		fmt.Printf("pinned: %s\n", arg)

	case "/unpin":
		p.Unpin()
		fmt.Println("automatic selection resumed")

	case "/rec":
		if err := mic.Start(ctx); err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
		fmt.Println("recording... /stop to submit")

	case "/stop":
		clip, err := mic.Stop()
		if err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
		if clip.Empty() {
			fmt.Println("nothing recorded")
			break
		}
		fmt.Printf("recorded %.1fs\n", clip.Duration())
		submit(func() (*tutor.Turn, error) { return p.SubmitClip(ctx, clip) }, p)

	case "/stats":
		snap := p.Stats().Current()
		fmt.Printf("turns %d, avg latency %.2fs, last model %s\n",
			snap.Turns, snap.AvgLatencySeconds, snap.LastModel)

	case "/reset":
		p.Reset()
		fmt.Println("conversation cleared")

	case "/quit", "/exit":
		return true

	default:
		fmt.Println("unknown command, /help for help")
	}
	return false
}

// submit runs one turn. Direct turns complete synchronously and print
// here; streaming turns print from the completion callback.
func submit(run func() (*tutor.Turn, error), p *tutor.Pipeline) {
	turn, err := run()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if turn.Completed() {
		fmt.Printf("tutor [%s, %.2fs]: %s\n", turn.Model, turn.LatencySeconds, turn.AssistantText)
	}
}
