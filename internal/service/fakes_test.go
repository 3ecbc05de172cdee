package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/investhub/backend/internal/config"
	"github.com/investhub/backend/internal/domain"
	"github.com/investhub/backend/internal/queue/task"
	"github.com/investhub/backend/internal/repository"
	"github.com/investhub/backend/pkg/hash"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"
)

// memStore mirrors the conditional updates of the SQL repositories.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]domain.User
	submissions   map[uuid.UUID]domain.KYCRecord
	verifications []domain.EmailVerification
	notifications []domain.Notification
	sessions      map[string]uuid.UUID

	// injected failures
	getUserErr error
	revokeErr  error
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[uuid.UUID]domain.User),
		submissions: make(map[uuid.UUID]domain.KYCRecord),
		sessions:    make(map[string]uuid.UUID),
	}
}

func (s *memStore) repositories() *repository.Repositories {
	return &repository.Repositories{
		Users:              memUsers{s},
		KYC:                memKYC{s},
		EmailVerifications: memVerifications{s},
		Notifications:      memNotifications{s},
		Sessions:           memSessions{s},
	}
}

func (s *memStore) loadKYC(u *domain.User) error {
	if u.KYCSubmissionID == nil {
		u.KYC = domain.KYCNone{}
		return nil
	}
	record, ok := s.submissions[*u.KYCSubmissionID]
	if !ok {
		return fmt.Errorf("submission %s missing", *u.KYCSubmissionID)
	}
	info, err := record.Info()
	if err != nil {
		return err
	}
	u.KYC = info
	return nil
}

func (s *memStore) notificationsOf(userID uuid.UUID, typ domain.NotificationType) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, v := range s.notifications {
		if v.UserID == userID && v.Type == typ {
			n++
		}
	}
	return n
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEntry
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.getUserErr != nil {
		return nil, r.s.getUserErr
	}

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := r.s.loadKYC(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			if err := r.s.loadKYC(&u); err != nil {
				return nil, err
			}
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memUsers) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[user.ID]
	if !ok || u.Version != user.Version {
		return domain.ErrVersionConflict
	}
	u.FirstName, u.LastName, u.Country = user.FirstName, user.LastName, user.Country
	u.PasswordHash, u.Role = user.PasswordHash, user.Role
	u.UpdatedAt = user.UpdatedAt
	u.Version++
	r.s.users[user.ID] = u
	user.Version = u.Version
	return nil
}

func (r memUsers) List(_ context.Context, offset, limit int) ([]domain.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })

	total := int64(len(all))
	if offset >= len(all) {
		return []domain.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r memUsers) Stats(_ context.Context) (*domain.UserStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stats := &domain.UserStats{ByCountry: make(map[string]int64)}
	for _, u := range r.s.users {
		stats.TotalUsers++
		if u.EmailVerified {
			stats.EmailVerified++
		}
		if u.KYCVerified {
			stats.KYCVerified++
		}
		if u.KYCStatus == domain.KYCStatusSubmitted {
			stats.KYCPending++
		}
		stats.ByCountry[u.Country]++
	}
	return stats, nil
}

type memKYC struct{ s *memStore }

func (r memKYC) Submit(_ context.Context, user *domain.User, record *domain.KYCRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[user.ID]
	if !ok || u.Version != user.Version || !u.KYCStatus.CanSubmit() {
		return domain.ErrVersionConflict
	}

	r.s.submissions[record.ID] = *record
	id := record.ID
	u.KYCStatus = domain.KYCStatusSubmitted
	u.KYCVerified = false
	u.KYCSubmissionID = &id
	u.Version++
	r.s.users[user.ID] = u
	return nil
}

func (r memKYC) Decide(_ context.Context, user *domain.User, decision domain.KYCDecision, notification *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[user.ID]
	if !ok || u.Version != user.Version || u.KYCStatus != domain.KYCStatusSubmitted ||
		u.KYCSubmissionID == nil || *u.KYCSubmissionID != decision.SubmissionID {
		return domain.ErrVersionConflict
	}

	record := r.s.submissions[decision.SubmissionID]
	if record.Status != domain.KYCStatusSubmitted {
		return domain.ErrVersionConflict
	}

	at, by := decision.DecidedAt, decision.DecidedBy
	switch decision.Status {
	case domain.KYCStatusVerified:
		record.VerifiedAt, record.VerifiedBy = &at, &by
	case domain.KYCStatusRejected:
		record.RejectedAt, record.RejectedBy = &at, &by
		record.RejectionReason.String, record.RejectionReason.Valid = decision.Reason, true
	default:
		return errors.New("unsupported decision")
	}
	record.Status = decision.Status

	u.KYCStatus = decision.Status
	u.KYCVerified = decision.Status == domain.KYCStatusVerified
	u.Version++

	r.s.submissions[record.ID] = record
	r.s.users[u.ID] = u
	r.s.notifications = append(r.s.notifications, *notification)
	return nil
}

func (r memKYC) ListPending(_ context.Context) ([]domain.KYCRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var res []domain.KYCRecord
	for _, u := range r.s.users {
		if u.KYCStatus == domain.KYCStatusSubmitted && u.KYCSubmissionID != nil {
			res = append(res, r.s.submissions[*u.KYCSubmissionID])
		}
	}
	return res, nil
}

func (r memKYC) ListByUserID(_ context.Context, userID uuid.UUID) ([]domain.KYCRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var res []domain.KYCRecord
	for _, rec := range r.s.submissions {
		if rec.UserID == userID {
			res = append(res, rec)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].SubmittedAt.After(res[j].SubmittedAt) })
	return res, nil
}

type memVerifications struct{ s *memStore }

func (r memVerifications) Create(_ context.Context, v *domain.EmailVerification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.verifications {
		old := &r.s.verifications[i]
		if old.UserID == v.UserID && !old.Confirmed && old.DeletedAt == nil {
			at := v.CreatedAt
			old.DeletedAt = &at
		}
	}
	r.s.verifications = append(r.s.verifications, *v)
	return nil
}

func (r memVerifications) GetActiveByUserID(_ context.Context, userID uuid.UUID) (*domain.EmailVerification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := len(r.s.verifications) - 1; i >= 0; i-- {
		v := r.s.verifications[i]
		if v.UserID == userID && !v.Confirmed && v.DeletedAt == nil {
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memVerifications) IncrementAttempts(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.verifications {
		if r.s.verifications[i].ID == id {
			r.s.verifications[i].Attempts++
		}
	}
	return nil
}

func (r memVerifications) Confirm(_ context.Context, v *domain.EmailVerification, confirmedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.verifications {
		cur := &r.s.verifications[i]
		if cur.ID != v.ID {
			continue
		}
		if cur.Confirmed || cur.DeletedAt != nil {
			return domain.ErrNoRowsAffected
		}
		cur.Confirmed = true
		cur.ConfirmedAt = &confirmedAt

		u, ok := r.s.users[v.UserID]
		if !ok {
			return domain.ErrNotFound
		}
		u.EmailVerified = true
		u.Version++
		r.s.users[u.ID] = u
		return nil
	}
	return domain.ErrNoRowsAffected
}

type memNotifications struct{ s *memStore }

func (r memNotifications) ListByUserID(_ context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res := make([]domain.Notification, 0)
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		if r.s.notifications[i].UserID == userID {
			res = append(res, r.s.notifications[i])
		}
	}
	return res, nil
}

func (r memNotifications) MarkRead(_ context.Context, id uuid.UUID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.notifications {
		n := &r.s.notifications[i]
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

type memSessions struct{ s *memStore }

func (r memSessions) Save(_ context.Context, tokenHash string, userID uuid.UUID, _ time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.sessions[tokenHash] = userID
	return nil
}

func (r memSessions) GetUserID(_ context.Context, tokenHash string) (uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.sessions[tokenHash]
	if !ok {
		return uuid.Nil, domain.ErrNotFound
	}
	return id, nil
}

func (r memSessions) Delete(_ context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, tokenHash)
	return nil
}

func (r memSessions) DeleteAllByUserID(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.revokeErr != nil {
		return r.s.revokeErr
	}

	for k, v := range r.s.sessions {
		if v == userID {
			delete(r.s.sessions, k)
		}
	}
	return nil
}

type fakeTokens struct {
	mu   sync.Mutex
	n    int
	code string
}

func (g *fakeTokens) NewOpaque() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++
	return fmt.Sprintf("opaque-token-%d", g.n)
}

func (g *fakeTokens) NewNumericCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.code
}

func (g *fakeTokens) setCode(code string) {
	g.mu.Lock()
	g.code = code
	g.mu.Unlock()
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failKey string
}

func (s *fakeStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failKey != "" && strings.Contains(key, s.failKey) {
		return errors.New("storage unavailable")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = b
	return nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) PresignedURL(_ context.Context, key string) (string, error) {
	return "https://storage.test/" + key + "?sig=1", nil
}

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []task.SendEmail
	err   error
}

func (e *fakeEnqueuer) EnqueueContext(_ context.Context, t *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.err != nil {
		return nil, e.err
	}
	var data task.SendEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return nil, err
	}
	e.tasks = append(e.tasks, data)
	return &asynq.TaskInfo{ID: uuid.NewString()}, nil
}

func (e *fakeEnqueuer) sent(kind domain.EmailKind) []task.SendEmail {
	e.mu.Lock()
	defer e.mu.Unlock()

	var res []task.SendEmail
	for _, t := range e.tasks {
		if t.Kind == kind {
			res = append(res, t)
		}
	}
	return res
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	services *Services
	store    *memStore
	tokens   *fakeTokens
	storage  *fakeStorage
	enqueuer *fakeEnqueuer
	clock    *fakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:    newMemStore(),
		tokens:   &fakeTokens{code: "123456"},
		storage:  &fakeStorage{objects: make(map[string][]byte)},
		enqueuer: &fakeEnqueuer{},
		clock:    &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	}

	cfg := &config.Config{
		Auth: config.AuthConfig{
			SessionTTL:              time.Hour,
			VerificationCodeTTL:     15 * time.Minute,
			VerificationMaxAttempts: 5,
		},
	}

	env.services = NewServices(Deps{
		Config:   cfg,
		Hasher:   hash.NewBcryptHasher(bcrypt.MinCost),
		Tokens:   env.tokens,
		Repos:    env.store.repositories(),
		Storage:  env.storage,
		Enqueuer: env.enqueuer,
		Now:      env.clock.Now,
	})

	return env
}

func defaultRegisterInput(email string) RegisterInput {
	return RegisterInput{
		Email:     email,
		Password:  "secret123",
		FirstName: "Ann",
		LastName:  "Lee",
		Country:   "Nigeria",
	}
}

// verifiedUser registers email and confirms it with the current fake code.
func (e *testEnv) verifiedUser(t *testing.T, email string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	id, err := e.services.Users.Register(ctx, defaultRegisterInput(email))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := e.services.Users.VerifyEmail(ctx, id, e.tokens.NewNumericCode()); err != nil {
		t.Fatalf("verify email: %v", err)
	}
	return id
}

func (e *testEnv) adminUser(t *testing.T) uuid.UUID {
	t.Helper()

	id := e.verifiedUser(t, "admin@x.com")
	e.store.mu.Lock()
	u := e.store.users[id]
	u.Role = domain.RoleAdmin
	e.store.users[id] = u
	e.store.mu.Unlock()
	return id
}

func newDocument(name string) *Document {
	body := []byte("image-bytes-" + name)
	return &Document{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(body)),
		Reader:      bytes.NewReader(body),
	}
}

func fullKYCInput() SubmitKYCInput {
	return SubmitKYCInput{
		FullName:    "Ann Lee",
		DateOfBirth: "1990-01-01",
		IDType:      "passport",
		IDFront:     newDocument("front.PNG"),
		IDBack:      newDocument("back.png"),
		Selfie:      newDocument("selfie.jpg"),
	}
}
