package simulation

import (
	"sync"
	"time"

	"github.com/civiclab/councilsim/broadcast"
	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/logging"
	"github.com/civiclab/councilsim/model"
	"github.com/civiclab/councilsim/persona"
)

// Store is the session storage the Manager runs against.
type Store interface {
	core.SessionStore

	// List returns snapshots of every session.
	List() []*core.Session
}

// Manager owns the simulation lifecycle: it creates sessions, launches at
// most one background run per session and bridges run events to the
// broadcast hub. Safe for concurrent use.
type Manager struct {
	store   Store
	hub     *broadcast.Hub
	debate  model.Model
	analyst model.Model
	caster  *persona.Generator
	logger  logging.Logger

	temperature float64
	maxTokens   int64
	tierTimeout time.Duration

	mu     sync.Mutex
	active map[string]struct{}
}

// Options configure a Manager.
type Options struct {
	// Caster overrides the persona generator. Defaults to a generator
	// backed by the analysis model.
	Caster *persona.Generator
	// Temperature is the sampling temperature for debate turns.
	Temperature float64
	// MaxTokens bounds each debate turn's length.
	MaxTokens int64
	// TierTimeout is the per-tier deadline for post-debate analysis.
	TierTimeout time.Duration
	// Logger defaults to logging.NoOpLogger.
	Logger logging.Logger
}

// NewManager constructs a Manager. debate generates hearing turns; analyst
// backs persona generation and post-debate analysis.
func NewManager(store Store, hub *broadcast.Hub, debate, analyst model.Model, optFns ...func(o *Options)) *Manager {
	opts := Options{
		Temperature: 0.85,
		MaxTokens:   400,
		TierTimeout: 120 * time.Second,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	caster := opts.Caster
	if caster == nil {
		caster = persona.NewGenerator(analyst, func(o *persona.GeneratorOptions) {
			o.Logger = opts.Logger
		})
	}

	return &Manager{
		store:       store,
		hub:         hub,
		debate:      debate,
		analyst:     analyst,
		caster:      caster,
		logger:      opts.Logger,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		tierTimeout: opts.TierTimeout,
		active:      make(map[string]struct{}),
	}
}

// Create allocates a new session in setup state.
func (m *Manager) Create(input core.SimulationInput) *core.Session {
	sess := m.store.Create(input)
	m.logger.Info("simulation created", "session_id", sess.ID, "city", input.CityContext())
	return sess
}

// Get returns a snapshot of the session, or the store's not-found error.
func (m *Manager) Get(id string) (*core.Session, error) {
	return m.store.Get(id)
}

// List returns snapshots of every session.
func (m *Manager) List() []*core.Session {
	return m.store.List()
}

// Running reports whether the session currently has an active run.
func (m *Manager) Running(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[id]
	return ok
}

// StartRun launches the background pipeline for a session. It is idempotent:
// only a session still in setup state with no active run is started, every
// other call reports false. The run outlives the caller.
func (m *Manager) StartRun(id string) (bool, error) {
	sess, err := m.store.Get(id)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, running := m.active[id]; running {
		return false, nil
	}
	if sess.Status != core.StatusSetup {
		return false, nil
	}

	m.active[id] = struct{}{}
	go m.run(id, sess.Input)
	return true, nil
}
