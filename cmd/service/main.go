package main

import (
	"context"
	"fmt"
	"os"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"gitlab.com/dirk.krummacker/birthday-assistant/internal/assistant"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/auth"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/config"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/database"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/log"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/metrics"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/service"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/store"
)

// Usage example on the command line:
//
//	> BIRTHDAY_AUTH_SECRET=changeme BIRTHDAY_DATABASE_USER=dirk BIRTHDAY_DATABASE_PASSWORD=bullo92 GEMINI_API_KEY=... go run main.go
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := log.New(log.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON})

	sqlDB, err := database.Open(cfg.DB.DSN())
	if err != nil {
		return err
	}
	st, err := store.New(sqlDB)
	if err != nil {
		return err
	}
	defer st.Close()

	loc, err := cfg.AI.Location()
	if err != nil {
		return err
	}

	ctx := context.Background()
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))

	m := metrics.New()
	orchestrator := assistant.New(g, st, assistant.Config{
		Model:     cfg.AI.Model,
		Location:  loc,
		ToolCalls: m.ToolInvocations,
	}, logger.With("component", "assistant"))

	server := service.New(service.Options{
		Store:             st,
		Assistant:         orchestrator,
		Verifier:          auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer),
		Metrics:           m,
		Logger:            logger,
		ChatRatePerMinute: cfg.AI.RatePerMinute,
		ChatBurst:         cfg.AI.Burst,
	})

	logger.Info("starting birthday assistant service", "port", cfg.Port, "model", cfg.AI.Model)
	return server.Router().Run(fmt.Sprintf(":%d", cfg.Port))
}
