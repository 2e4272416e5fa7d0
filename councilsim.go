// Package councilsim provides a high-level façade over the simulation
// Manager and its service abstractions (session store, broadcast hub, model
// adapters). Most applications interact with this package by:
//  1. Creating a CouncilSim via New() with a debate and an analysis model
//     (optionally overriding the default in-memory services)
//  2. Creating simulations from user input (Create)
//  3. Starting runs and observing their event stream via the Hub
//
// The façade delegates orchestration to simulation.Manager while keeping
// setup ergonomics concise. All defaults are safe for local development and
// testing; the cmd/councilsim server supplies configured models and a
// structured logger.
package councilsim

import (
	"time"

	"github.com/civiclab/councilsim/broadcast"
	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/logging"
	"github.com/civiclab/councilsim/model"
	"github.com/civiclab/councilsim/session"
	"github.com/civiclab/councilsim/simulation"
)

// Options configures the CouncilSim instance.
type Options struct {
	// Store overrides the default in-memory session store.
	Store simulation.Store
	// Hub overrides the default broadcast hub.
	Hub *broadcast.Hub
	// Temperature is the sampling temperature for debate turns.
	Temperature float64
	// MaxTokens bounds each debate turn's length.
	MaxTokens int64
	// TierTimeout is the per-tier deadline for post-debate analysis.
	TierTimeout time.Duration
	// Logger defaults to logging.NoOpLogger.
	Logger logging.Logger
}

// CouncilSim bundles the simulation services behind one handle.
type CouncilSim struct {
	manager *simulation.Manager
	hub     *broadcast.Hub
	store   simulation.Store
}

// New creates a CouncilSim. debate generates hearing turns; analyst backs
// persona generation and post-debate analysis.
func New(debate, analyst model.Model, optFns ...func(o *Options)) *CouncilSim {
	opts := Options{
		Temperature: 0.85,
		MaxTokens:   400,
		TierTimeout: 120 * time.Second,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Store == nil {
		opts.Store = session.NewInMemoryStore()
	}
	if opts.Hub == nil {
		opts.Hub = broadcast.NewHub(func(o *broadcast.Options) { o.Logger = opts.Logger })
	}

	manager := simulation.NewManager(opts.Store, opts.Hub, debate, analyst, func(o *simulation.Options) {
		o.Temperature = opts.Temperature
		o.MaxTokens = opts.MaxTokens
		o.TierTimeout = opts.TierTimeout
		o.Logger = opts.Logger
	})

	return &CouncilSim{manager: manager, hub: opts.Hub, store: opts.Store}
}

// Create allocates a new simulation session in setup state.
func (c *CouncilSim) Create(input core.SimulationInput) *core.Session {
	return c.manager.Create(input)
}

// Start launches the background run for a session. Idempotent; reports
// whether this call started the run.
func (c *CouncilSim) Start(id string) (bool, error) {
	return c.manager.StartRun(id)
}

// Manager exposes the underlying simulation manager.
func (c *CouncilSim) Manager() *simulation.Manager { return c.manager }

// Hub exposes the broadcast hub for attaching observers.
func (c *CouncilSim) Hub() *broadcast.Hub { return c.hub }
