package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"llamad/internal/catalog"
	"llamad/internal/fetch"
	"llamad/internal/model"
	"llamad/internal/runtime"
	"llamad/internal/store"
)

// Service owns the single active-model slot and drives records through their
// lifecycle. It is the only mutator of record state.
type Service struct {
	store   *store.Store
	cat     *catalog.Catalog
	fetcher fetch.Fetcher
	rt      runtime.Runtime
	log     zerolog.Logger
	pub     EventPublisher
	start   time.Time

	mu     sync.RWMutex
	active *model.Record

	// Per-name setup serialization: two concurrent Setup calls for the same
	// name must not interleave transitions.
	namesMu sync.Mutex
	names   map[string]*sync.Mutex
}

// Config bundles the collaborators a Service needs.
type Config struct {
	Store     *store.Store
	Catalog   *catalog.Catalog
	Fetcher   fetch.Fetcher
	Runtime   runtime.Runtime
	Logger    zerolog.Logger
	Publisher EventPublisher
}

// New constructs a Service. The publisher defaults to a drop-everything noop.
func New(cfg Config) *Service {
	pub := cfg.Publisher
	if pub == nil {
		pub = noopPublisher{}
	}
	return &Service{
		store:   cfg.Store,
		cat:     cfg.Catalog,
		fetcher: cfg.Fetcher,
		rt:      cfg.Runtime,
		log:     cfg.Logger,
		pub:     pub,
		start:   time.Now(),
		names:   make(map[string]*sync.Mutex),
	}
}

// Catalog exposes the static registry for the presentation layers.
func (s *Service) Catalog() *catalog.Catalog { return s.cat }

// Ready reports whether the active model can serve generation.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active != nil && s.active.Ready()
}

// lockName returns the setup mutex for name, creating it on first use.
func (s *Service) lockName(name string) *sync.Mutex {
	s.namesMu.Lock()
	defer s.namesMu.Unlock()
	mu, ok := s.names[name]
	if !ok {
		mu = &sync.Mutex{}
		s.names[name] = mu
	}
	return mu
}
