package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"merithub/internal/cache"
	"merithub/internal/events"
	"merithub/internal/models"
	"merithub/internal/repositories"
)

// ===============================
// EVENT BUS FAKE
// ===============================

// fakeEventBus records published events for assertion.
type fakeEventBus struct {
	mu        sync.Mutex
	published []events.Event
}

func newFakeEventBus() *fakeEventBus { return &fakeEventBus{} }

func (f *fakeEventBus) Publish(ctx context.Context, event events.Event) error {
	return f.PublishAsync(ctx, event)
}

func (f *fakeEventBus) PublishAsync(ctx context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, event)
	return nil
}

func (f *fakeEventBus) Subscribe(eventType string, handler events.EventHandler) error   { return nil }
func (f *fakeEventBus) Unsubscribe(eventType string, handler events.EventHandler) error { return nil }
func (f *fakeEventBus) Start(ctx context.Context) error                                 { return nil }
func (f *fakeEventBus) Stop(ctx context.Context) error                                  { return nil }
func (f *fakeEventBus) Stats() *events.EventBusStats                                    { return &events.EventBusStats{} }

func (f *fakeEventBus) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.published {
		out = append(out, e.GetEventType())
	}
	return out
}

// ===============================
// ACTIVITY REPOSITORY FAKE
// ===============================

// fakeActivityRepository dedupes inserts by source event ID and serves
// canned metric bundles keyed by (profile, year, scope).
type fakeActivityRepository struct {
	mu      sync.Mutex
	seen    map[string]bool
	bundles map[string]*models.MetricBundle
	listing []*models.MetricBundle
}

func newFakeActivityRepository() *fakeActivityRepository {
	return &fakeActivityRepository{
		seen:    make(map[string]bool),
		bundles: make(map[string]*models.MetricBundle),
	}
}

func metricsKey(profileID int64, year int, scope models.Scope) string {
	return fmt.Sprintf("%d|%d|%s", profileID, year, scope.Key())
}

func (f *fakeActivityRepository) setMetrics(profileID int64, year int, scope models.Scope, bundle *models.MetricBundle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bundles[metricsKey(profileID, year, scope)] = bundle
}

func (f *fakeActivityRepository) setListing(bundles ...*models.MetricBundle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listing = bundles
}

func (f *fakeActivityRepository) insert(sourceEventID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[sourceEventID] {
		return false
	}
	f.seen[sourceEventID] = true
	return true
}

func (f *fakeActivityRepository) InsertReview(ctx context.Context, a *models.ReviewActivity) (bool, error) {
	return f.insert(a.SourceEventID), nil
}

func (f *fakeActivityRepository) InsertSubmission(ctx context.Context, a *models.SubmissionActivity) (bool, error) {
	return f.insert(a.SourceEventID), nil
}

func (f *fakeActivityRepository) InsertEditorActivity(ctx context.Context, a *models.EditorActivity) (bool, error) {
	return f.insert(a.SourceEventID), nil
}

func (f *fakeActivityRepository) GetProfileMetrics(ctx context.Context, profileID int64, filter repositories.MetricsFilter) (*models.MetricBundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if bundle, ok := f.bundles[metricsKey(profileID, filter.Year, filter.Scope)]; ok {
		return bundle, nil
	}
	return &models.MetricBundle{ProfileID: profileID, Year: filter.Year}, nil
}

func (f *fakeActivityRepository) ListMetrics(ctx context.Context, filter repositories.MetricsFilter) ([]*models.MetricBundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listing, nil
}

// ===============================
// BADGE REPOSITORY FAKE
// ===============================

type fakeBadgeRepository struct {
	mu      sync.Mutex
	catalog []*models.Badge
	grants  map[string]*models.UserBadge
	nextID  int64
}

func newFakeBadgeRepository(catalog ...*models.Badge) *fakeBadgeRepository {
	return &fakeBadgeRepository{
		catalog: catalog,
		grants:  make(map[string]*models.UserBadge),
	}
}

func grantKey(g *models.UserBadge) string {
	journal := int64(0)
	if g.JournalID != nil {
		journal = *g.JournalID
	}
	return fmt.Sprintf("%d|%d|%d|%d", g.ProfileID, g.BadgeID, g.Year, journal)
}

func (f *fakeBadgeRepository) ListBadges(ctx context.Context, activeOnly bool) ([]*models.Badge, error) {
	var out []*models.Badge
	for _, b := range f.catalog {
		if activeOnly && !b.IsActive {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBadgeRepository) GetBadgeByID(ctx context.Context, id int64) (*models.Badge, error) {
	for _, b := range f.catalog {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBadgeRepository) ListFamilyBadges(ctx context.Context, family models.BadgeFamily) ([]*models.Badge, error) {
	var out []*models.Badge
	for _, b := range f.catalog {
		if b.Family == family && b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBadgeRepository) InsertGrant(ctx context.Context, grant *models.UserBadge) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := grantKey(grant)
	if _, ok := f.grants[key]; ok {
		return false, nil
	}
	f.nextID++
	grant.ID = f.nextID
	f.grants[key] = grant
	return true, nil
}

func (f *fakeBadgeRepository) GetGrantByID(ctx context.Context, id int64) (*models.UserBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.grants {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, nil
}

func (f *fakeBadgeRepository) ListGrantsByProfile(ctx context.Context, profileID int64) ([]*models.UserBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.UserBadge
	for _, g := range f.grants {
		if g.ProfileID == profileID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeBadgeRepository) CountHolders(ctx context.Context, badgeID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	holders := make(map[int64]bool)
	for _, g := range f.grants {
		if g.BadgeID == badgeID {
			holders[g.ProfileID] = true
		}
	}
	return int64(len(holders)), nil
}

// ===============================
// LEADERBOARD REPOSITORY FAKE
// ===============================

type fakeLeaderboardRepository struct {
	mu        sync.Mutex
	snapshots map[string]*models.LeaderboardSnapshot
	replaced  int
}

func newFakeLeaderboardRepository() *fakeLeaderboardRepository {
	return &fakeLeaderboardRepository{snapshots: make(map[string]*models.LeaderboardSnapshot)}
}

func fakeSnapshotKey(category models.LeaderboardCategory, period models.LeaderboardPeriod, periodEnd time.Time, scope models.Scope) string {
	return fmt.Sprintf("%s|%s|%s|%s", category, period, periodEnd.Format("2006-01-02"), scope.Key())
}

func (f *fakeLeaderboardRepository) ReplaceSnapshot(ctx context.Context, snapshot *models.LeaderboardSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaced++
	snapshot.ID = int64(f.replaced)
	stored := *snapshot
	stored.Entries = append([]*models.LeaderboardEntry(nil), snapshot.Entries...)
	f.snapshots[fakeSnapshotKey(snapshot.Category, snapshot.Period, snapshot.PeriodEnd, snapshot.Scope)] = &stored
	return nil
}

func (f *fakeLeaderboardRepository) GetSnapshot(ctx context.Context, category models.LeaderboardCategory, period models.LeaderboardPeriod, periodEnd time.Time, scope models.Scope) (*models.LeaderboardSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.snapshots[fakeSnapshotKey(category, period, periodEnd, scope)]
	if !ok {
		return nil, nil
	}
	out := *stored
	out.Entries = append([]*models.LeaderboardEntry(nil), stored.Entries...)
	return &out, nil
}

// ===============================
// AWARD REPOSITORY FAKE
// ===============================

type fakeAwardRepository struct {
	mu     sync.Mutex
	awards map[string]*models.Award
	nextID int64
}

func newFakeAwardRepository() *fakeAwardRepository {
	return &fakeAwardRepository{awards: make(map[string]*models.Award)}
}

func awardKey(awardType models.AwardType, year int, journalID int64, scope models.Scope) string {
	discipline, country := "", ""
	if scope.Discipline != nil {
		discipline = *scope.Discipline
	}
	if scope.Country != nil {
		country = *scope.Country
	}
	return fmt.Sprintf("%s|%d|%d|%s|%s", awardType, year, journalID, discipline, country)
}

func (f *fakeAwardRepository) GetAward(ctx context.Context, awardType models.AwardType, year int, journalID int64, scope models.Scope) (*models.Award, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.awards[awardKey(awardType, year, journalID, scope)], nil
}

func (f *fakeAwardRepository) GetAwardByID(ctx context.Context, id int64) (*models.Award, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.awards {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAwardRepository) SaveAward(ctx context.Context, award *models.Award, replace bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := awardKey(award.AwardType, award.Year, award.JournalID, models.Scope{Discipline: award.Discipline, Country: award.Country})
	if _, ok := f.awards[key]; ok && !replace {
		return false, nil
	}
	f.nextID++
	award.ID = f.nextID
	f.awards[key] = award
	return true, nil
}

func (f *fakeAwardRepository) ListAwardsByYear(ctx context.Context, year int) ([]*models.Award, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Award
	for _, a := range f.awards {
		if year == 0 || a.Year == year {
			out = append(out, a)
		}
	}
	return out, nil
}

// ===============================
// CERTIFICATE REPOSITORY FAKE
// ===============================

type fakeCertificateRepository struct {
	mu        sync.Mutex
	sequences map[string]int64
	certs     []*models.Certificate
	nextID    int64

	// failInserts forces the next N inserts to report a verification
	// code collision.
	failInserts int
}

func newFakeCertificateRepository() *fakeCertificateRepository {
	return &fakeCertificateRepository{sequences: make(map[string]int64)}
}

func (f *fakeCertificateRepository) NextSequence(ctx context.Context, prefix string, year int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%s|%d", prefix, year)
	f.sequences[key]++
	return f.sequences[key], nil
}

func (f *fakeCertificateRepository) Insert(ctx context.Context, cert *models.Certificate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failInserts > 0 {
		f.failInserts--
		return repositories.ErrDuplicateCode
	}
	for _, c := range f.certs {
		if c.VerificationCode == cert.VerificationCode {
			return repositories.ErrDuplicateCode
		}
		if c.CertificateNumber == cert.CertificateNumber {
			return repositories.ErrDuplicateNumber
		}
		if cert.AwardID != nil && c.AwardID != nil && *c.AwardID == *cert.AwardID {
			return repositories.ErrSubjectAlreadyCertified
		}
		if cert.UserBadgeID != nil && c.UserBadgeID != nil && *c.UserBadgeID == *cert.UserBadgeID {
			return repositories.ErrSubjectAlreadyCertified
		}
	}
	f.nextID++
	cert.ID = f.nextID
	stored := *cert
	f.certs = append(f.certs, &stored)
	return nil
}

func (f *fakeCertificateRepository) find(match func(*models.Certificate) bool) (*models.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.certs {
		if match(c) {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCertificateRepository) GetByID(ctx context.Context, id int64) (*models.Certificate, error) {
	return f.find(func(c *models.Certificate) bool { return c.ID == id })
}

func (f *fakeCertificateRepository) GetByNumber(ctx context.Context, number string) (*models.Certificate, error) {
	return f.find(func(c *models.Certificate) bool { return c.CertificateNumber == number })
}

func (f *fakeCertificateRepository) GetByVerificationCode(ctx context.Context, code string) (*models.Certificate, error) {
	return f.find(func(c *models.Certificate) bool { return c.VerificationCode == code })
}

func (f *fakeCertificateRepository) GetByAwardID(ctx context.Context, awardID int64) (*models.Certificate, error) {
	return f.find(func(c *models.Certificate) bool { return c.AwardID != nil && *c.AwardID == awardID })
}

func (f *fakeCertificateRepository) GetByUserBadgeID(ctx context.Context, userBadgeID int64) (*models.Certificate, error) {
	return f.find(func(c *models.Certificate) bool { return c.UserBadgeID != nil && *c.UserBadgeID == userBadgeID })
}

func (f *fakeCertificateRepository) ListByProfile(ctx context.Context, profileID int64) ([]*models.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Certificate
	for _, c := range f.certs {
		if c.RecipientProfileID == profileID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ===============================
// JOURNAL REPOSITORY FAKE
// ===============================

type fakeJournalRepository struct {
	journals map[int64]*models.Journal
}

func newFakeJournalRepository(journals ...*models.Journal) *fakeJournalRepository {
	f := &fakeJournalRepository{journals: make(map[int64]*models.Journal)}
	for _, j := range journals {
		f.journals[j.ID] = j
	}
	return f
}

func (f *fakeJournalRepository) GetByID(ctx context.Context, id int64) (*models.Journal, error) {
	return f.journals[id], nil
}

func (f *fakeJournalRepository) Exists(ctx context.Context, id int64) (bool, error) {
	j, ok := f.journals[id]
	return ok && j.IsActive, nil
}

func (f *fakeJournalRepository) List(ctx context.Context) ([]*models.Journal, error) {
	var out []*models.Journal
	for _, j := range f.journals {
		out = append(out, j)
	}
	return out, nil
}

// ===============================
// CACHE FAKE
// ===============================

type fakeCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.items[key]
	return data, ok
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := cache.Encode(value)
	if err != nil {
		return err
	}
	f.items[key] = data
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	return nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

func (f *fakeCache) Health(ctx context.Context) error { return nil }

func (f *fakeCache) Close() error { return nil }
