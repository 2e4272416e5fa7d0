package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/civiclab/councilsim/broadcast"
	"github.com/civiclab/councilsim/config"
	"github.com/civiclab/councilsim/logging"
	"github.com/civiclab/councilsim/model"
	"github.com/civiclab/councilsim/model/anthropic"
	"github.com/civiclab/councilsim/model/openai"
	"github.com/civiclab/councilsim/persona"
	"github.com/civiclab/councilsim/server"
	"github.com/civiclab/councilsim/session"
	"github.com/civiclab/councilsim/simulation"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the simulation API and streaming server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	settings, err := config.Load(nil)
	if err != nil {
		return err
	}
	if addr != "" {
		settings.Addr = addr
	}
	if settings.APIKey() == "" {
		return fmt.Errorf("no API key configured for provider %q", settings.Provider)
	}

	logger := logging.New(&logging.Config{
		Level:  logging.ParseLevel(settings.LogLevel),
		Format: settings.LogFormat,
		Output: cmd.ErrOrStderr(),
	})

	debate, analyst := buildModels(settings)

	store := session.NewInMemoryStore()
	hub := broadcast.NewHub(func(o *broadcast.Options) { o.Logger = logger })

	caster := persona.NewGenerator(analyst, func(o *persona.GeneratorOptions) {
		o.Timeout = settings.PersonaTimeout
		o.ResearchTimeout = settings.ResearchTimeout
		o.Logger = logger
	})
	mgr := simulation.NewManager(store, hub, debate, analyst, func(o *simulation.Options) {
		o.Caster = caster
		o.Temperature = settings.DebateTemperature
		o.MaxTokens = settings.MaxTokensPerTurn
		o.TierTimeout = settings.AnalysisTierTimeout
		o.Logger = logger
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	return server.Start(ctx, server.StartOpts{
		Addr:    settings.Addr,
		Manager: mgr,
		Hub:     hub,
		Logger:  logger,
	})
}

// buildModels constructs the debate and analysis models for the configured
// provider.
func buildModels(settings *config.Settings) (debate, analyst model.Model) {
	if settings.Provider == config.ProviderOpenAI {
		debate = openai.NewModel(func(o *openai.Options) {
			o.Model = settings.DebateModel
			o.Temperature = settings.DebateTemperature
			o.APIKey = settings.OpenAIAPIKey
		})
		analyst = openai.NewModel(func(o *openai.Options) {
			o.Model = settings.AnalysisModel
			o.APIKey = settings.OpenAIAPIKey
		})
		return debate, analyst
	}

	debate = anthropic.NewModel(func(o *anthropic.Options) {
		o.Model = anthropicsdk.Model(settings.DebateModel)
		o.Temperature = settings.DebateTemperature
		o.APIKey = settings.AnthropicAPIKey
	})
	analyst = anthropic.NewModel(func(o *anthropic.Options) {
		o.Model = anthropicsdk.Model(settings.AnalysisModel)
		o.APIKey = settings.AnthropicAPIKey
	})
	return debate, analyst
}
