package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/bz888/koalagpt/internal/api"
	"github.com/bz888/koalagpt/internal/api/client"
	"github.com/bz888/koalagpt/internal/api/server"
	"github.com/bz888/koalagpt/internal/config"
	"github.com/bz888/koalagpt/internal/logger"
	"github.com/bz888/koalagpt/internal/speech"
)

const (
	defaultOut = "reply.wav"
	usage      = `usage: koalagpt <command> [flags] [prompt]

commands:
  ask       send a prompt to the simplified endpoint and print the reply
  complete  run a text completion
  chat      stream a chat completion, Ctrl+C stops the stream
  moderate  classify the prompt with the moderation endpoint
  speak     ask for a spoken reply and save it (-out .wav or .flac)
  serve     run the local relay server (-addr)
  relay     send a prompt through a running relay server (-addr)

flags:
  -model string   model to query (default "gpt4")
  -voice string   voice id for spoken replies
  -out string     output file for audio (default "reply.wav")
  -addr string    relay server listen address (default "localhost:8080")
  -internet       allow the model to use internet access
  -dev            development mode
  -logPath string path to save the log file
`
)

var (
	errUsage    = errors.New("invalid usage")
	localLogger *logger.Logger
)

type command func(ctx context.Context, c *client.Client, f *config.Flags, out io.Writer) error

var commands = map[string]command{
	"ask":      ask,
	"complete": complete,
	"chat":     chat,
	"moderate": moderate,
	"speak":    speak,
	"serve":    serve,
	"relay":    relay,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	logger.Close()
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	f, err := config.ParseFlags(args[0], args[1:])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if err := logger.InitLogger(f.Dev, f.LogPath); err != nil {
		return err
	}
	localLogger = logger.NewLogger("main")

	conf, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	if !conf.HasCredentials() {
		localLogger.Warn("No API key configured, sending anonymous requests")
	}

	c, err := client.New(conf)
	if err != nil {
		return err
	}
	return cmd(ctx, c, f, out)
}

func prompt(f *config.Flags) (string, error) {
	text := strings.TrimSpace(strings.Join(f.Args, " "))
	if text == "" {
		return "", fmt.Errorf("%w: no prompt given", errUsage)
	}
	return text, nil
}

func buildOptions(f *config.Flags) []client.BuildOption {
	opts := []client.BuildOption{client.WithInternetAccess(f.Internet)}
	if f.Voice != "" {
		opts = append(opts, client.WithVoice(f.Voice))
	}
	return opts
}

func ask(ctx context.Context, c *client.Client, f *config.Flags, out io.Writer) error {
	text, err := prompt(f)
	if err != nil {
		return err
	}
	localLogger.Info("Input model:", f.Model)

	reply, err := c.CreateChatCompletionSimplePrompt(ctx, client.NewPromptRequest(f.Model, text), buildOptions(f)...)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, reply)
	return nil
}

func complete(ctx context.Context, c *client.Client, f *config.Flags, out io.Writer) error {
	text, err := prompt(f)
	if err != nil {
		return err
	}

	res, err := c.CreateCompletion(ctx, client.CompletionRequest{
		Model:    f.Model,
		Messages: []client.Part{{Role: client.RoleUser, Content: text}},
	})
	if err != nil {
		return err
	}
	if res.Failed() {
		return res.Err
	}
	fmt.Fprintln(out, res.Value.Text())
	return nil
}

func chat(ctx context.Context, c *client.Client, f *config.Flags, out io.Writer) error {
	text, err := prompt(f)
	if err != nil {
		return err
	}

	req := client.NewChatRequest(f.Model, client.Part{Role: client.RoleUser, Content: text})
	return c.CreateChatCompletionStream(ctx, req,
		func(batch []client.ChatCompletionResponse) {
			for _, frame := range batch {
				fmt.Fprint(out, frame.Text())
			}
		},
		func() {
			fmt.Fprintln(out)
		},
	)
}

func moderate(ctx context.Context, c *client.Client, f *config.Flags, out io.Writer) error {
	text, err := prompt(f)
	if err != nil {
		return err
	}

	res, err := c.CreateModeration(ctx, client.ModerationRequest{Input: []string{text}})
	if err != nil {
		return err
	}
	if res.Failed() {
		return res.Err
	}

	for _, result := range res.Value.Results {
		var flagged []string
		for category, hit := range result.Categories {
			if hit {
				flagged = append(flagged, category)
			}
		}
		sort.Strings(flagged)
		fmt.Fprintf(out, "flagged: %t", result.Flagged)
		if len(flagged) > 0 {
			fmt.Fprintf(out, " (%s)", strings.Join(flagged, ", "))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func speak(ctx context.Context, c *client.Client, f *config.Flags, out io.Writer) error {
	text, err := prompt(f)
	if err != nil {
		return err
	}
	path := f.Out
	if path == "" {
		path = defaultOut
	}

	clip, err := c.CreateSpeechPrompt(ctx, client.NewPromptRequest(f.Model, text), buildOptions(f)...)
	if err != nil {
		return err
	}
	if err := speech.WriteFile(path, clip); err != nil {
		return fmt.Errorf("saving voice reply: %w", err)
	}
	fmt.Fprintf(out, "saved %s (%s)\n", path, speech.Duration(clip))
	return nil
}

func serve(ctx context.Context, c *client.Client, f *config.Flags, out io.Writer) error {
	s := server.New(c, f.Addr, server.WithInternetAccess(f.Internet))
	return s.Run(ctx)
}

func relay(ctx context.Context, _ *client.Client, f *config.Flags, out io.Writer) error {
	text, err := prompt(f)
	if err != nil {
		return err
	}

	rc, err := api.NewRelayClient(f.Addr, nil)
	if err != nil {
		return err
	}
	if !rc.Alive(ctx) {
		return fmt.Errorf("relay server not reachable on %s, start it with: koalagpt serve", f.Addr)
	}

	_, err = rc.Chat(ctx, f.Model, text, func(piece string) {
		fmt.Fprint(out, piece)
	})
	fmt.Fprintln(out)
	return err
}
