package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/liftprogress/internal"
	"github.com/2beens/liftprogress/internal/config"
	"github.com/2beens/liftprogress/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "lift-progress-service",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	trelloAPIKey := os.Getenv("TRELLO_API_KEY")
	if trelloAPIKey == "" {
		log.Fatalf("trello api key not set, use TRELLO_API_KEY env var to set it")
	}

	trelloAPIToken := os.Getenv("TRELLO_TOKEN")
	if trelloAPIToken == "" {
		log.Fatalf("trello api token not set, use TRELLO_TOKEN env var to set it")
	}

	authToken := os.Getenv("LIFT_PROGRESS_AUTH_TOKEN")
	if authToken == "" {
		log.Warnln("auth token not set, running open, use LIFT_PROGRESS_AUTH_TOKEN to set it")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	server, err := internal.NewServer(internal.NewServerParams{
		Config:         cfg,
		TrelloAPIKey:   trelloAPIKey,
		TrelloAPIToken: trelloAPIToken,
		AuthToken:      authToken,
		VersionInfo:    versionInfo,
	})
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)

	server.GracefulShutdown()
}

// versionInfo is set at build time via:
//
//	go build -ldflags "-X main.versionInfo=$(git rev-parse HEAD)"
var versionInfo = "dev"
