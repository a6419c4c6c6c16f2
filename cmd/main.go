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

	"github.com/joho/godotenv"

	"github.com/tubemind/tubemind/internal/api"
	"github.com/tubemind/tubemind/internal/config"
	"github.com/tubemind/tubemind/internal/conversation"
	"github.com/tubemind/tubemind/internal/i18n"
	"github.com/tubemind/tubemind/internal/notify"
	"github.com/tubemind/tubemind/internal/progress"
	"github.com/tubemind/tubemind/internal/session"
	"github.com/tubemind/tubemind/internal/store"
	"github.com/tubemind/tubemind/internal/ui"
	"github.com/tubemind/tubemind/internal/videocache"
	"github.com/tubemind/tubemind/pkg/log"
)

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()
	log.InitLogger(log.LevelInfo)

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	kv := openStore(cfg)
	defer kv.Close()

	term := ui.NewTerminal(os.Stdout)
	client := api.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.Timeout)*time.Second)

	coordinator := i18n.NewCoordinator(kv, term, client, cfg.Locale.Default)
	sessions := session.NewStore(kv, coordinator.Locale)
	coordinator.AttachWelcomeLog(sessions)
	coordinator.SetBoundVideoFunc(sessions.ActiveBoundVideo)

	notifications := notify.NewCenter(cfg.Notify.TTL, coordinator.Direction)
	notifications.SetListener(term)
	defer notifications.Close()

	cache := videocache.New()
	controller := conversation.NewController(
		client, sessions, cache, client,
		progress.Timing{
			PollInterval: cfg.Progress.PollInterval,
			SlowDelay:    cfg.Progress.SlowDelay,
			GraceDelay:   cfg.Progress.GraceDelay,
		},
		notifications, term, coordinator.Locale,
	)
	defer controller.Close()

	coordinator.Apply()
	if sessions.ActiveID() == "" {
		sessions.Create("")
	}
	if err := controller.StartRefreshSchedule(cfg.Refresh.CronExpr); err != nil {
		log.Warn("Video list refresh not scheduled: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	runREPL(ctx, controller, sessions, coordinator, term)
}

func openStore(cfg *config.Config) store.Store {
	kv, err := store.NewSQLiteStore(cfg.Storage.DBPath())
	if err != nil {
		// The app stays usable; state just does not survive restarts.
		log.Error("Failed to open persistent store, falling back to memory: %v", err)
		return store.NewMemoryStore()
	}
	return kv
}

func runREPL(
	ctx context.Context,
	controller *conversation.Controller,
	sessions *session.Store,
	coordinator *i18n.Coordinator,
	term *ui.Terminal,
) {
	fmt.Println(term.Anchor(i18n.AnchorAppTitle))
	if active, ok := sessions.Active(); ok {
		for _, msg := range active.Messages {
			term.RenderMessage(msg.Sender, msg.Text)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !dispatch(ctx, line, controller, sessions, coordinator, term) {
				return
			}
		}
	}
}

// dispatch runs one command line; returns false on quit.
func dispatch(
	ctx context.Context,
	line string,
	controller *conversation.Controller,
	sessions *session.Store,
	coordinator *i18n.Coordinator,
	term *ui.Terminal,
) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "quit", "exit":
		return false
	case "help":
		printHelp()
	case "process":
		if !term.SubmissionEnabled() {
			fmt.Println(term.Anchor(i18n.AnchorWaitingMessage))
			return true
		}
		if err := controller.ProcessVideo(ctx, arg); err != nil {
			log.Debug("Process failed: %v", err)
		}
	case "ask":
		controller.Ask(ctx, arg)
	case "summary":
		controller.Summarize(ctx, arg)
	case "videos":
		videos, err := controller.RefreshVideos(ctx)
		if err != nil {
			fmt.Println(i18n.AskError(coordinator.Locale(), ""))
			return true
		}
		for _, v := range videos {
			fmt.Printf("%s  %s (%s)\n", v.VideoID, v.Title, v.Channel)
		}
	case "rmvideo":
		if err := controller.DeleteVideo(ctx, arg); err != nil {
			log.Debug("Delete failed: %v", err)
		}
	case "sessions":
		term.SessionList(sessions.Sessions(), sessions.ActiveID())
	case "new":
		sessions.Create(arg)
	case "rename":
		id, title, _ := strings.Cut(arg, " ")
		sessions.Rename(id, title)
	case "delete":
		sessions.Delete(arg)
	case "clear":
		if arg == "" {
			arg = sessions.ActiveID()
		}
		sessions.Clear(arg)
	case "switch":
		sessions.SetActive(arg)
		if active, ok := sessions.Active(); ok {
			for _, msg := range active.Messages {
				term.RenderMessage(msg.Sender, msg.Text)
			}
		}
	case "lang":
		if err := coordinator.SetLanguage(arg); err != nil {
			fmt.Printf("Unsupported language %q\n", arg)
		}
	default:
		// Bare text is treated as a question.
		controller.Ask(ctx, line)
	}
	return true
}

func printHelp() {
	fmt.Print(`Commands:
  process <url>        ingest a YouTube video
  ask <question>       ask about the loaded video (bare text works too)
  summary [length]     summarize the loaded video
  videos               list processed videos
  rmvideo <id>         delete a processed video
  sessions             list chat sessions
  new [title]          start a new session
  rename <id> <title>  rename a session
  delete <id>          delete a session
  clear [id]           reset a session to its welcome message
  switch <id>          activate another session
  lang <en|ar>         switch the interface language
  quit
`)
}
