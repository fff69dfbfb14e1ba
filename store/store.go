// ABOUTME: Policy Store owning the authoritative in-memory policy collection
// ABOUTME: Every mutation persists the full snapshot and rolls back if the write fails
package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/storage"
)

// ErrPolicyNotFound is returned by Update for an unknown id.
var ErrPolicyNotFound = errors.New("policy not found")

// Repository persists full snapshots of the collection. *storage.Adapter implements it.
type Repository interface {
	Load() []models.Policy
	Save(policies []models.Policy) error
}

// Observer is told about policies after they have been added and persisted.
// Implementations must not block; the Store calls them synchronously.
type Observer interface {
	PolicyAdded(p models.Policy)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(p models.Policy)

// PolicyAdded calls f(p).
func (f ObserverFunc) PolicyAdded(p models.Policy) { f(p) }

// Store is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	repo      Repository
	policies  []models.Policy
	observers []Observer

	now    func() time.Time
	newID  func() string
	logger *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the uuid v4 id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithObserver subscribes o at construction.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

// New loads the collection from repo and runs pending record migrations,
// writing the migrated array back when anything changed.
func New(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.policies = s.loadAndMigrate()
	return s
}

func (s *Store) loadAndMigrate() []models.Policy {
	loaded := s.repo.Load()
	migrated, changed := storage.Migrate(loaded, s.now())
	if changed {
		s.logger.Info("migrated stored policies", "count", len(migrated))
		if err := s.repo.Save(migrated); err != nil {
			s.logger.Warn("failed to write migrated policies", "err", err)
		}
	}
	return migrated
}

// Reload replaces the in-memory collection with the persisted one, e.g. after a sync.
func (s *Store) Reload() {
	policies := s.loadAndMigrate()
	s.mu.Lock()
	s.policies = policies
	s.mu.Unlock()
}

// Subscribe adds an observer.
func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// commit persists next and swaps it in. On failure the collection is left untouched.
// Callers hold s.mu.
func (s *Store) commit(next []models.Policy) error {
	if err := s.repo.Save(next); err != nil {
		s.logger.Error("failed to persist policies", "err", err)
		return err
	}
	s.policies = next
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.policies, func(p models.Policy) bool { return p.ID == id })
}

// Add validates input, assigns a fresh id and timestamps, persists, then notifies observers.
func (s *Store) Add(input models.PolicyInput) (models.Policy, error) {
	now := s.now()
	input = input.Normalized()
	if err := input.Validate(now); err != nil {
		return models.Policy{}, err
	}

	s.mu.Lock()
	id := s.newID()
	for s.indexOf(id) >= 0 {
		id = s.newID()
	}
	p := models.Policy{
		ID:                  id,
		PolicyNumber:        input.PolicyNumber,
		PolicyholderName:    input.PolicyholderName,
		DateOfBirth:         input.DateOfBirth,
		PolicyRenewalDate:   input.PolicyRenewalDate,
		RenewalFrequency:    input.RenewalFrequency,
		MobileNumber:        input.MobileNumber,
		PolicyPremiumAmount: input.PolicyPremiumAmount,
		InsuranceCategory:   input.InsuranceCategory,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	next := append(slices.Clone(s.policies), p)
	err := s.commit(next)
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	if err != nil {
		return models.Policy{}, err
	}

	s.logger.Debug("policy added", "id", p.ID, "number", p.PolicyNumber)
	for _, o := range observers {
		s.notify(o, p)
	}
	return p, nil
}

// notify isolates observer panics from the caller of Add.
func (s *Store) notify(o Observer, p models.Policy) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("policy observer panicked", "id", p.ID, "panic", r)
		}
	}()
	o.PolicyAdded(p)
}

// Update merges patch into the policy with id and refreshes updatedAt.
// Format invariants are re-checked; ages and renewal dates are not re-checked against today.
func (s *Store) Update(id string, patch models.PolicyPatch) (models.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Policy{}, fmt.Errorf("%w: %s", ErrPolicyNotFound, id)
	}

	old := s.policies[i]
	updated := patch.Apply(old)
	if err := updated.ValidateStored(); err != nil {
		return models.Policy{}, err
	}

	updated.UpdatedAt = s.now()
	if updated.UpdatedAt.Before(old.UpdatedAt) {
		updated.UpdatedAt = old.UpdatedAt
	}

	next := slices.Clone(s.policies)
	next[i] = updated
	if err := s.commit(next); err != nil {
		return models.Policy{}, err
	}
	return updated, nil
}

// Remove deletes the policy with id. Unknown ids are a no-op.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	return s.commit(slices.Delete(slices.Clone(s.policies), i, i+1))
}

// Replace swaps in a whole new collection, as an import does. Records are normalized;
// one without an id, policy number or name would be dropped on the next load, so it
// rejects the whole batch.
func (s *Store) Replace(policies []models.Policy) error {
	next := make([]models.Policy, len(policies))
	seen := make(map[string]bool, len(policies))
	for i, p := range policies {
		p = p.Normalized()
		switch {
		case p.ID == "":
			return fmt.Errorf("policy %s has no id", p.PolicyNumber)
		case p.PolicyNumber == "" || p.PolicyholderName == "":
			return fmt.Errorf("policy %s is missing its number or name", p.ID)
		case seen[p.ID]:
			return fmt.Errorf("duplicate policy id %s", p.ID)
		}
		seen[p.ID] = true
		next[i] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(next)
}

// Clear removes every policy.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit([]models.Policy{})
}

// Get returns the policy with id.
func (s *Store) Get(id string) (models.Policy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.policies[i], true
	}
	return models.Policy{}, false
}

// FindByNumber returns the first policy with the given policy number, in any case.
func (s *Store) FindByNumber(number string) (models.Policy, bool) {
	want := models.PolicyInput{PolicyNumber: number}.Normalized().PolicyNumber

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.policies {
		if p.PolicyNumber == want {
			return p, true
		}
	}
	return models.Policy{}, false
}

// Policies returns a copy of the collection in insertion order.
func (s *Store) Policies() []models.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.policies)
}

// Len returns the number of policies.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.policies)
}

// NextPolicyNumber generates a policy number not used by any stored policy.
func (s *Store) NextPolicyNumber() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		n := storage.GeneratePolicyNumber(s.now())
		if !slices.ContainsFunc(s.policies, func(p models.Policy) bool { return p.PolicyNumber == n }) {
			return n
		}
	}
}
