package store

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/storage"
)

// fakeRepo records saves and fails them on demand.
type fakeRepo struct {
	mu       sync.Mutex
	stored   []models.Policy
	saves    int
	failNext bool
}

func (r *fakeRepo) Load() []models.Policy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Policy{}, r.stored...)
}

func (r *fakeRepo) Save(policies []models.Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return &storage.StorageError{Op: "write", Key: storage.PoliciesKey, Err: errors.New("quota exceeded")}
	}
	r.saves++
	r.stored = append([]models.Policy{}, policies...)
	return nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var testNow = time.Date(2026, time.October, 16, 10, 0, 0, 0, time.Local)

func newTestStore(t *testing.T, repo *fakeRepo, opts ...Option) (*Store, *testClock) {
	t.Helper()
	clock := &testClock{now: testNow}
	opts = append([]Option{WithClock(clock.Now), WithLogger(log.New(io.Discard))}, opts...)
	return New(repo, opts...), clock
}

func ashaInput() models.PolicyInput {
	return models.PolicyInput{
		PolicyNumber:        "POL123456ABCD",
		PolicyholderName:    "Asha Rao",
		DateOfBirth:         "1990-05-01",
		PolicyRenewalDate:   "2030-01-01",
		RenewalFrequency:    models.FrequencyYearly,
		MobileNumber:        "9876543210",
		PolicyPremiumAmount: 12000,
		InsuranceCategory:   models.CategoryLife,
	}
}

func TestAddAssignsIdentityAndPersists(t *testing.T) {
	repo := &fakeRepo{}
	s, _ := newTestStore(t, repo)

	p, err := s.Add(ashaInput())
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, testNow, p.CreatedAt)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.Equal(t, []models.Policy{p}, repo.Load())
	assert.Equal(t, 1, s.Len())
}

func TestAddRejectsInvalidInput(t *testing.T) {
	repo := &fakeRepo{}
	s, _ := newTestStore(t, repo)

	in := ashaInput()
	in.MobileNumber = "123"
	_, err := s.Add(in)

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "mobileNumber")
	assert.Zero(t, repo.saves)
	assert.Zero(t, s.Len())
}

func TestAddUniqueIDs(t *testing.T) {
	ids := []string{"dup", "dup", "fresh", "other"}
	next := 0
	gen := func() string {
		id := ids[next]
		next++
		return id
	}
	s, _ := newTestStore(t, &fakeRepo{}, WithIDGenerator(gen))

	a, err := s.Add(ashaInput())
	require.NoError(t, err)
	b, err := s.Add(ashaInput())
	require.NoError(t, err)

	assert.Equal(t, "dup", a.ID)
	assert.Equal(t, "fresh", b.ID)
}

func TestManyAddsHaveDistinctIDs(t *testing.T) {
	s, _ := newTestStore(t, &fakeRepo{})

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		p, err := s.Add(ashaInput())
		require.NoError(t, err)
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestAddRollsBackOnSaveFailure(t *testing.T) {
	repo := &fakeRepo{}
	var notified []models.Policy
	s, _ := newTestStore(t, repo, WithObserver(ObserverFunc(func(p models.Policy) { notified = append(notified, p) })))

	repo.failNext = true
	_, err := s.Add(ashaInput())

	var serr *storage.StorageError
	require.True(t, errors.As(err, &serr))
	assert.Zero(t, s.Len())
	assert.Empty(t, notified)
}

func TestAddNotifiesObservers(t *testing.T) {
	var got []models.Policy
	s, _ := newTestStore(t, &fakeRepo{})
	s.Subscribe(ObserverFunc(func(p models.Policy) { got = append(got, p) }))
	s.Subscribe(ObserverFunc(func(models.Policy) { panic("boom") }))

	p, err := s.Add(ashaInput())
	require.NoError(t, err, "a panicking observer does not fail the add")
	assert.Equal(t, []models.Policy{p}, got)
}

func TestUpdateRefreshesUpdatedAt(t *testing.T) {
	s, clock := newTestStore(t, &fakeRepo{})
	p, err := s.Add(ashaInput())
	require.NoError(t, err)

	clock.Set(testNow.Add(time.Hour))
	premium := 15000.0
	updated, err := s.Update(p.ID, models.PolicyPatch{PolicyPremiumAmount: &premium})
	require.NoError(t, err)

	assert.Equal(t, 15000.0, updated.PolicyPremiumAmount)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	assert.Equal(t, testNow.Add(time.Hour), updated.UpdatedAt)

	got, ok := s.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, updated, got)
}

func TestUpdateTimestampNeverGoesBackwards(t *testing.T) {
	s, clock := newTestStore(t, &fakeRepo{})
	p, err := s.Add(ashaInput())
	require.NoError(t, err)

	clock.Set(testNow.Add(-time.Hour))
	name := "Asha R. Rao"
	updated, err := s.Update(p.ID, models.PolicyPatch{PolicyholderName: &name})
	require.NoError(t, err)

	assert.False(t, updated.UpdatedAt.Before(p.UpdatedAt))
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
}

func TestUpdateUnknownID(t *testing.T) {
	s, _ := newTestStore(t, &fakeRepo{})
	_, err := s.Update("missing", models.PolicyPatch{})
	assert.ErrorIs(t, err, ErrPolicyNotFound)
}

func TestUpdateValidatesFormat(t *testing.T) {
	s, _ := newTestStore(t, &fakeRepo{})
	p, err := s.Add(ashaInput())
	require.NoError(t, err)

	mobile := "12"
	_, err = s.Update(p.ID, models.PolicyPatch{MobileNumber: &mobile})
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))

	got, _ := s.Get(p.ID)
	assert.Equal(t, "9876543210", got.MobileNumber)
}

func TestUpdateAllowsPastRenewal(t *testing.T) {
	s, _ := newTestStore(t, &fakeRepo{})
	p, err := s.Add(ashaInput())
	require.NoError(t, err)

	past := "2020-01-01"
	_, err = s.Update(p.ID, models.PolicyPatch{PolicyRenewalDate: &past})
	assert.NoError(t, err)
}

func TestUpdateRollsBackOnSaveFailure(t *testing.T) {
	repo := &fakeRepo{}
	s, _ := newTestStore(t, repo)
	p, err := s.Add(ashaInput())
	require.NoError(t, err)

	repo.failNext = true
	name := "Someone Else"
	_, err = s.Update(p.ID, models.PolicyPatch{PolicyholderName: &name})
	require.Error(t, err)

	got, _ := s.Get(p.ID)
	assert.Equal(t, "Asha Rao", got.PolicyholderName)
}

func TestRemoveIsIdempotent(t *testing.T) {
	repo := &fakeRepo{}
	s, _ := newTestStore(t, repo)
	p, err := s.Add(ashaInput())
	require.NoError(t, err)
	before := s.Policies()
	saves := repo.saves

	require.NoError(t, s.Remove("missing"))
	assert.Equal(t, before, s.Policies())
	assert.Equal(t, saves, repo.saves)

	require.NoError(t, s.Remove(p.ID))
	assert.Zero(t, s.Len())
	require.NoError(t, s.Remove(p.ID))
	assert.Empty(t, repo.Load())
}

func TestRemoveRollsBackOnSaveFailure(t *testing.T) {
	repo := &fakeRepo{}
	s, _ := newTestStore(t, repo)
	p, err := s.Add(ashaInput())
	require.NoError(t, err)

	repo.failNext = true
	assert.Error(t, s.Remove(p.ID))
	_, ok := s.Get(p.ID)
	assert.True(t, ok)
}

func TestReplaceAndClear(t *testing.T) {
	repo := &fakeRepo{}
	s, _ := newTestStore(t, repo)
	_, err := s.Add(ashaInput())
	require.NoError(t, err)

	imported := []models.Policy{
		{ID: "x", PolicyNumber: "POLX", PolicyholderName: "Ravi Kumar", RenewalFrequency: models.FrequencyYearly},
		{ID: "y", PolicyNumber: "POLY", PolicyholderName: "Meera Iyer", RenewalFrequency: models.FrequencyMonthly},
	}
	require.NoError(t, s.Replace(imported))
	assert.Equal(t, imported, s.Policies())
	assert.Equal(t, imported, repo.Load())

	assert.Error(t, s.Replace([]models.Policy{{ID: "z"}, {ID: "z"}}))
	assert.Equal(t, imported, s.Policies(), "rejected replace leaves data untouched")

	require.NoError(t, s.Clear())
	assert.Zero(t, s.Len())
	assert.Empty(t, repo.Load())
}

func TestReplaceNormalizesRecords(t *testing.T) {
	repo := &fakeRepo{}
	s, _ := newTestStore(t, repo)

	imported := models.Policy{ID: "x", PolicyNumber: " pol123abc ", PolicyholderName: "Ravi Kumar", MobileNumber: "98765-43210"}
	require.NoError(t, s.Replace([]models.Policy{imported}))

	got, ok := s.FindByNumber("POL123ABC")
	require.True(t, ok)
	assert.Equal(t, "POL123ABC", got.PolicyNumber)
	assert.Equal(t, "9876543210", got.MobileNumber)
	assert.Equal(t, got, repo.Load()[0])
	assert.Equal(t, " pol123abc ", imported.PolicyNumber, "input is not mutated")
}

func TestReplaceRejectsRecordsLoadWouldDrop(t *testing.T) {
	repo := &fakeRepo{}
	s, _ := newTestStore(t, repo)
	_, err := s.Add(ashaInput())
	require.NoError(t, err)
	before := s.Policies()

	assert.Error(t, s.Replace([]models.Policy{{ID: "x", PolicyNumber: "", PolicyholderName: "Ravi Kumar"}}))
	assert.Error(t, s.Replace([]models.Policy{{ID: "x", PolicyNumber: "POLX", PolicyholderName: "  "}}))
	assert.Equal(t, before, s.Policies())
}

func TestNewMigratesLegacyRecords(t *testing.T) {
	repo := &fakeRepo{stored: []models.Policy{{ID: "old", PolicyNumber: "POL1", PolicyholderName: "Old Timer"}}}
	s, _ := newTestStore(t, repo)

	p, ok := s.Get("old")
	require.True(t, ok)
	assert.Equal(t, models.FrequencyYearly, p.RenewalFrequency)
	assert.Equal(t, testNow, p.CreatedAt)
	assert.Equal(t, 1, repo.saves, "migrated array is written back")
	assert.Equal(t, models.FrequencyYearly, repo.Load()[0].RenewalFrequency)

	// nothing left to migrate
	_, _ = newTestStore(t, repo)
	assert.Equal(t, 1, repo.saves)
}

func TestReload(t *testing.T) {
	repo := &fakeRepo{}
	s, _ := newTestStore(t, repo)
	assert.Zero(t, s.Len())

	repo.stored = []models.Policy{{ID: "synced", PolicyNumber: "POL9", PolicyholderName: "From Sync",
		RenewalFrequency: models.FrequencyYearly, CreatedAt: testNow, UpdatedAt: testNow}}
	s.Reload()
	_, ok := s.Get("synced")
	assert.True(t, ok)
}

func TestFindByNumber(t *testing.T) {
	s, _ := newTestStore(t, &fakeRepo{})
	p, err := s.Add(ashaInput())
	require.NoError(t, err)

	got, ok := s.FindByNumber(" pol123456abcd")
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)

	_, ok = s.FindByNumber("POL000")
	assert.False(t, ok)
}

func TestNextPolicyNumber(t *testing.T) {
	s, _ := newTestStore(t, &fakeRepo{})
	n := s.NextPolicyNumber()
	assert.Regexp(t, `^POL\d{6}[0-9A-Z]{4}$`, n)
}

func TestConcurrentAdds(t *testing.T) {
	s, _ := newTestStore(t, &fakeRepo{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := ashaInput()
			in.PolicyNumber = fmt.Sprintf("POL%03d", i)
			_, err := s.Add(in)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, s.Len())
}
