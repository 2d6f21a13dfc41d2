package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/crimeboss/internal/config"
	"github.com/gravitas-games/crimeboss/internal/network"
	"github.com/gravitas-games/crimeboss/internal/storage"
	"github.com/gravitas-games/crimeboss/pkg/engine"
	"github.com/gravitas-games/crimeboss/pkg/inventory"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

// BossCharacter is the id of the character every new save starts with.
const BossCharacter models.CharacterID = "boss"

// ErrSessionFull is returned when max_bosses are already connected.
var ErrSessionFull = errors.New("session is full")

// saveTimeout bounds persistence calls made outside a request.
const saveTimeout = 5 * time.Second

// Session owns the live stores of connected bosses
type Session struct {
	ID        string
	CreatedAt time.Time

	engine    *engine.Engine
	snapshots storage.SnapshotStore
	bus       engine.EventBus
	stores    *lru.Cache[string, *engine.Store]
	storeMu   sync.Mutex

	// Boss management, keyed by save key
	bosses      map[string]*models.Boss
	connections map[string]map[*Connection]bool
	mu          sync.RWMutex

	config *config.Config
	log    logrus.FieldLogger
}

// NewSession creates a new game session
func NewSession(id string, cfg *config.Config, eng *engine.Engine, snapshots storage.SnapshotStore, log logrus.FieldLogger) (*Session, error) {
	s := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		engine:      eng,
		snapshots:   snapshots,
		bus:         engine.NewSimpleEventBus(),
		bosses:      make(map[string]*models.Boss),
		connections: make(map[string]map[*Connection]bool),
		config:      cfg,
		log:         log.WithField("session", id),
	}

	stores, err := lru.NewWithEvict[string, *engine.Store](cfg.Session.CachedStores, s.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create store cache: %w", err)
	}
	s.stores = stores

	s.log.Infof("Session created, caching up to %d stores", cfg.Session.CachedStores)
	return s, nil
}

// Store returns the live store for a boss, loading the save or starting a
// new one on first use.
func (s *Session) Store(ctx context.Context, boss *models.Boss) (*engine.Store, error) {
	key := boss.SaveKey()

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	if store, ok := s.stores.Get(key); ok {
		return store, nil
	}

	state, err := s.snapshots.Load(ctx, key)
	switch {
	case errors.Is(err, storage.ErrSnapshotNotFound):
		state, err = s.newSave(boss)
		if err != nil {
			return nil, fmt.Errorf("failed to create save for %s: %w", key, err)
		}
		if err := s.snapshots.Save(ctx, key, state); err != nil {
			return nil, fmt.Errorf("failed to persist new save for %s: %w", key, err)
		}
		s.log.WithField("boss", key).Info("Created new save")
	case err != nil:
		return nil, fmt.Errorf("failed to load save for %s: %w", key, err)
	default:
		if err := state.Validate(s.engine.Catalog()); err != nil {
			return nil, fmt.Errorf("save for %s is inconsistent: %w", key, err)
		}
	}

	store := engine.NewStore(key, s.engine, state, s.bus)
	s.bus.Subscribe(key, s.persist)
	s.stores.Add(key, store)
	return store, nil
}

// newSave builds the starting state: configured containers, one character
// and the starter kit.
func (s *Session) newSave(boss *models.Boss) (engine.State, error) {
	cfg := s.config.Engine
	state := engine.NewState(models.Party{Energy: cfg.StartingEnergy, MaxEnergy: cfg.StartingEnergy})
	name := boss.Username
	if name == "" {
		name = "Boss"
	}
	state.Characters[BossCharacter] = models.NewCharacter(BossCharacter, name, cfg.StartingHP)

	var err error
	capacities := map[inventory.Kind]int{
		inventory.KindPlayer:  cfg.Capacities.Player,
		inventory.KindSafe:    cfg.Capacities.Safe,
		inventory.KindStorage: cfg.Capacities.Storage,
	}
	for _, kind := range inventory.Kinds() {
		if state, err = s.engine.OpenContainer(state, kind, capacities[kind]); err != nil {
			return engine.State{}, err
		}
	}
	bossChar := state.Characters[BossCharacter]
	for _, trait := range cfg.StartingTraits {
		bossChar.RaiseTrait(trait)
	}
	state.Characters[BossCharacter] = bossChar

	for _, kit := range cfg.StartingItems {
		state, err = s.engine.Grant(state, inventory.Kind(kit.Container), models.ItemID(kit.Item), kit.Quantity)
		if err != nil {
			return engine.State{}, fmt.Errorf("starting item %s: %w", kit.Item, err)
		}
	}
	state.Version = 0
	return state, nil
}

// persist saves applied snapshots. It runs on the event bus goroutine, so
// saves can land out of order; the store's version check drops stale ones.
func (s *Session) persist(ev engine.Event) {
	if ev.Type != engine.EventApplied || ev.State == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	err := s.snapshots.Save(ctx, ev.Owner, *ev.State)
	switch {
	case errors.Is(err, storage.ErrStaleSnapshot):
		s.log.WithFields(logrus.Fields{"boss": ev.Owner, "version": ev.Version}).Debug("Skipped stale save")
	case err != nil:
		s.log.WithError(err).WithField("boss", ev.Owner).Error("Failed to persist save")
	}
}

// onEvict closes a store leaving the cache and flushes its final state, so a
// reload sees every action the store accepted.
func (s *Session) onEvict(key string, store *engine.Store) {
	final := store.Close()
	s.bus.Unsubscribe(key)
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.snapshots.Save(ctx, key, final); err != nil && !errors.Is(err, storage.ErrStaleSnapshot) {
		s.log.WithError(err).WithField("boss", key).Error("Failed to flush evicted save")
	}
}

// Flush writes every cached store. Called on shutdown.
func (s *Session) Flush() {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()
	s.stores.Purge()
}

// Dispatch runs an action against the boss's store. A store evicted between
// lookup and dispatch rejects the action, which is then retried once on a
// freshly loaded store.
func (s *Session) Dispatch(ctx context.Context, boss *models.Boss, action engine.Action) (engine.State, error) {
	for attempt := 0; ; attempt++ {
		store, err := s.Store(ctx, boss)
		if err != nil {
			return engine.State{}, err
		}
		state, err := store.Dispatch(action)
		if errors.Is(err, engine.ErrStoreClosed) && attempt == 0 {
			s.log.WithField("boss", boss.SaveKey()).Debug("Store evicted during dispatch, retrying")
			continue
		}
		return state, err
	}
}

// CanJoin reports whether boss may connect without exceeding max_bosses.
func (s *Session) CanJoin(boss *models.Boss) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, connected := s.bosses[boss.SaveKey()]; connected {
		return true
	}
	return len(s.bosses) < s.config.Session.MaxBosses
}

// AddConnection registers a connection for a boss. A boss may have several
// tabs open on the same save.
func (s *Session) AddConnection(boss *models.Boss, conn *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := boss.SaveKey()
	if _, connected := s.bosses[key]; !connected && len(s.bosses) >= s.config.Session.MaxBosses {
		return ErrSessionFull
	}
	s.bosses[key] = boss
	if s.connections[key] == nil {
		s.connections[key] = make(map[*Connection]bool)
	}
	s.connections[key][conn] = true

	s.log.WithField("boss", key).Infof("%s connected (%d tabs)", boss.Username, len(s.connections[key]))
	return nil
}

// RemoveConnection unregisters a connection, dropping the boss after the
// last one closes.
func (s *Session) RemoveConnection(boss *models.Boss, conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := boss.SaveKey()
	conns, exists := s.connections[key]
	if !exists {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(s.connections, key)
		delete(s.bosses, key)
		s.log.WithField("boss", key).Infof("%s disconnected", boss.Username)
	}
}

// BroadcastExcept sends a message to every connection of a save except one
func (s *Session) BroadcastExcept(saveKey string, exclude *Connection, msg *network.ServerMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections[saveKey] {
		if conn != exclude {
			conn.SendMessage(msg)
		}
	}
}

// BossCount returns the number of connected bosses.
func (s *Session) BossCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bosses)
}
