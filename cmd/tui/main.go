package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"snowman/internal/gateway"
	"snowman/internal/platform/config"
	"snowman/internal/tui"
	"snowman/internal/users/sqlite"
)

func main() {
	name := flag.String("name", "", "player name")
	phone := flag.String("phone", "", "player phone number, 10 to 15 digits")
	flag.Parse()

	cfg, err := config.LoadTerminal()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.SetPrefix("[TUI] ")
	if *name == "" || *phone == "" {
		fmt.Fprintln(os.Stderr, "usage: tui -name NAME -phone DIGITS")
		os.Exit(2)
	}

	gw, closeGateway, err := openGateway(cfg)
	if err != nil {
		log.Fatalf("open gateway: %v", err)
	}
	defer closeGateway()

	// The screen owns the terminal from here on, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	var sounds tui.Sounds = tui.Silent{}
	if !cfg.Mute {
		spk, err := tui.NewSpeaker()
		if err != nil {
			log.Printf("audio unavailable, playing silently: %v", err)
		} else {
			defer spk.Close()
			sounds = spk
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("init screen: %v", err)
	}
	defer screen.Fini()

	app, err := tui.New(tui.Config{
		Screen:         screen,
		Gateway:        gw,
		Tuning:         cfg.Tuning,
		Sounds:         sounds,
		Logger:         log.Default(),
		GatewayTimeout: cfg.GatewayTimeout,
	})
	if err != nil {
		screen.Fini()
		log.Fatalf("create app: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Login(ctx, *name, *phone); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}
	if err := app.Start(time.Now().UTC()); err != nil {
		screen.Fini()
		log.Fatalf("start session: %v", err)
	}
	if err := app.Run(ctx); err != nil {
		log.Printf("run: %v", err)
	}
}

// openGateway talks to a remote gateway when GATEWAY_URL is set and
// otherwise keeps users in a local SQLite file.
func openGateway(cfg config.Terminal) (gateway.Gateway, func(), error) {
	if cfg.GatewayURL != "" {
		client, err := gateway.NewClient(cfg.GatewayURL, cfg.GatewayTimeout)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	}
	usersStore, err := sqlite.Open(cfg.UsersDBPath)
	if err != nil {
		return nil, nil, err
	}
	return gateway.NewLocal(usersStore, "Christmas Game Terminal"), func() { _ = usersStore.Close() }, nil
}
