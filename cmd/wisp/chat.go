package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"wisp/domain"
	"wisp/errors"
	"wisp/services"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

const chatHelp = `Type a message and press enter to send it.
  /pick N           copy suggestion N into the draft
  /draft TEXT       replace the draft
  /send             send the draft
  /compose [TONE]   rewrite the draft in one tone (default casual)
  /tones [TONE...]  propose the draft in several tones
  /choose TONE      keep one of the proposed tones as the draft
  /dismiss          hide the current notice
  /quit             leave the conversation`

func newChatCommand(flags *rootFlags) *cobra.Command {
	var peer string

	cmd := &cobra.Command{
		Use:     "chat",
		Aliases: []string{"c"},
		Short:   "Open a live conversation with a peer",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context(), flags, domain.ParticipantID(peer), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&peer, "peer", "p", "", "Participant id of the other side")
	_ = cmd.MarkFlagRequired("peer")

	return cmd
}

func runChat(parent context.Context, flags *rootFlags, peer domain.ParticipantID, in io.Reader, out io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	a, err := openApp(flags)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signalContext(parent)
	defer stop()

	source := openLineSource(ctx, in, out, filepath.Join(os.TempDir(), ".wisp_history"))
	defer source.close()
	out = source.out

	conv := a.orchestrator.Chat().Open(peer)
	conv.Observe(newRenderer(out).Render)

	fmt.Fprintf(out, "You are %s, chatting with %s on %s\n", a.orchestrator.Local(), peer, conv.Channel())
	fmt.Fprintln(out, styleMuted.Render("/help lists the commands"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.orchestrator.Start(ctx, conv)
	}()

	session := &chatSession{conv: conv, out: out}
	lines := source.lines
	for {
		select {
		case <-ctx.Done():
			stop()
			<-done
			return nil
		case line, ok := <-lines:
			if !ok || session.handle(ctx, line) {
				stop()
				<-done
				return nil
			}
		}
	}
}

// lineSource feeds input lines to the session. Writes to out keep the prompt
// intact while the view refreshes under it.
type lineSource struct {
	lines <-chan string
	out   io.Writer
	close func()
}

// openLineSource reads through readline, with history, and falls back to plain
// line scanning when the terminal cannot be set up.
func openLineSource(ctx context.Context, in io.Reader, out io.Writer, historyFile string) *lineSource {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		Stdin:           io.NopCloser(in),
		Stdout:          out,
		HistoryFile:     historyFile,
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
	})
	if err != nil {
		fmt.Fprintf(out, "Error initializing readline: %v, falling back to simple input\n", err)
		return &lineSource{lines: scanLines(ctx, in), out: out, close: func() {}}
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := rl.Readline()
			if err != nil {
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					return
				}
				fmt.Fprintf(os.Stderr, "reading input: %v\n", err)
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return &lineSource{lines: lines, out: rl.Stdout(), close: func() { _ = rl.Close() }}
}

// scanLines reads in on its own goroutine so that a signal can end the session
// while a read is pending.
func scanLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && err != io.EOF {
			fmt.Fprintf(os.Stderr, "reading input: %v\n", err)
		}
	}()
	return lines
}

// chatSession turns input lines into conversation intents.
type chatSession struct {
	conv *services.Conversation
	out  io.Writer
}

// handle runs one line and reports whether the session is over.
func (s *chatSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		s.send(ctx, line)
		return false
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(s.out, chatHelp)
	case "/pick":
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintln(s.out, "usage: /pick N")
			return false
		}
		if draft, ok := s.conv.UseSuggestion(n - 1); ok {
			fmt.Fprintf(s.out, "draft: %s\n", draft)
		} else {
			fmt.Fprintf(s.out, "no suggestion %d\n", n)
		}
	case "/draft":
		s.conv.SetDraft(arg)
	case "/send":
		s.send(ctx, s.conv.View().Draft)
	case "/compose":
		tone := domain.DefaultTone
		if arg != "" {
			tone = domain.Tone(arg)
		}
		fmt.Fprintf(s.out, "draft: %s\n", s.conv.Compose(ctx, tone))
	case "/tones":
		tones := domain.DefaultTones
		if arg != "" {
			tones = nil
			for _, field := range strings.Fields(arg) {
				tones = append(tones, domain.Tone(field))
			}
		}
		if variants := s.conv.ComposeVariants(ctx, tones); len(variants) == 0 {
			fmt.Fprintln(s.out, "no variants available")
		}
	case "/choose":
		if s.conv.ChooseVariant(domain.Tone(arg)) {
			fmt.Fprintf(s.out, "draft: %s\n", s.conv.View().Draft)
		} else {
			fmt.Fprintf(s.out, "no variant %q\n", arg)
		}
	case "/dismiss":
		s.conv.DismissNotice()
	default:
		fmt.Fprintf(s.out, "unknown command %s, /help lists the commands\n", command)
	}
	return false
}

func (s *chatSession) send(ctx context.Context, text string) {
	if _, err := s.conv.Send(ctx, text); err != nil && !errors.Is(err, errors.ErrEmptyText) {
		fmt.Fprintf(s.out, "not sent: %v\n", err)
	}
}
