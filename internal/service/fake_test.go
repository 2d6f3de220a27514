package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ewaller/leadloop/internal/repository"
	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeQuerier is an in-memory repository.Querier for service tests. The
// mutex makes the conditional generation-log insert atomic, matching the
// advisory-lock semantics of the real query.
type fakeQuerier struct {
	mu sync.Mutex

	users     map[uuid.UUID]repository.User
	leads     map[uuid.UUID]repository.Lead
	sessions  map[string]repository.Session
	logRows   []repository.GenerationLogEntry
	reminders map[uuid.UUID]repository.Reminder

	// Write counters for asserting side-effect-free paths.
	logInsertCalls int
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		users:     make(map[uuid.UUID]repository.User),
		leads:     make(map[uuid.UUID]repository.Lead),
		sessions:  make(map[string]repository.Session),
		reminders: make(map[uuid.UUID]repository.Reminder),
	}
}

// addUser seeds a user with the given plan and returns its ID.
func (f *fakeQuerier) addUser(plan string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.users[id] = repository.User{
		ID:           id,
		Email:        id.String() + "@example.com",
		PasswordHash: "x",
		Plan:         plan,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	return id
}

// addLead seeds a lead owned by userID and returns its ID.
func (f *fakeQuerier) addLead(userID uuid.UUID, name string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.leads[id] = repository.Lead{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Status:    "new",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return id
}

// addLogEntry seeds a generation-log row at the given creation time.
func (f *fakeQuerier) addLogEntry(userID uuid.UUID, createdAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logRows = append(f.logRows, repository.GenerationLogEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Purpose:   "follow_up",
		Content:   "seed",
		CreatedAt: createdAt,
	})
}

func (f *fakeQuerier) logCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logRows)
}

// ----- Users and sessions -----

func (f *fakeQuerier) CreateUser(_ context.Context, arg repository.CreateUserParams) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := repository.User{
		ID:           arg.ID,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		Name:         arg.Name,
		Plan:         arg.Plan,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[arg.ID] = u
	return u, nil
}

func (f *fakeQuerier) GetUserByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeQuerier) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, sql.ErrNoRows
}

func (f *fakeQuerier) UpdateUserPlan(_ context.Context, arg repository.UpdateUserPlanParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[arg.ID]
	if !ok {
		return sql.ErrNoRows
	}
	u.Plan = arg.Plan
	f.users[arg.ID] = u
	return nil
}

func (f *fakeQuerier) CreateSession(_ context.Context, arg repository.CreateSessionParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[arg.TokenHash] = repository.Session{
		ID:        arg.ID,
		UserID:    arg.UserID,
		TokenHash: arg.TokenHash,
		ExpiresAt: arg.ExpiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (f *fakeQuerier) GetSessionByTokenHash(_ context.Context, tokenHash string) (repository.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[tokenHash]
	if !ok {
		return repository.Session{}, sql.ErrNoRows
	}
	return s, nil
}

func (f *fakeQuerier) DeleteSessionByTokenHash(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, tokenHash)
	return nil
}

func (f *fakeQuerier) DeleteExpiredSessions(context.Context) error { return nil }

// ----- Leads -----

func (f *fakeQuerier) CreateLead(_ context.Context, arg repository.CreateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := repository.Lead{
		ID:        arg.ID,
		UserID:    arg.UserID,
		Name:      arg.Name,
		Contact:   arg.Contact,
		Notes:     arg.Notes,
		Status:    arg.Status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.leads[arg.ID] = l
	return l, nil
}

func (f *fakeQuerier) GetLeadByID(_ context.Context, arg repository.GetLeadByIDParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[arg.ID]
	if !ok || l.UserID != arg.UserID {
		return repository.Lead{}, sql.ErrNoRows
	}
	return l, nil
}

func (f *fakeQuerier) ListLeadsByUserID(_ context.Context, userID uuid.UUID) ([]repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Lead
	for _, l := range f.leads {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeQuerier) CountLeadsByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, l := range f.leads {
		if l.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeQuerier) UpdateLead(_ context.Context, arg repository.UpdateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[arg.ID]
	if !ok || l.UserID != arg.UserID {
		return repository.Lead{}, sql.ErrNoRows
	}
	if arg.Name.Valid {
		l.Name = arg.Name.String
	}
	if arg.Contact.Valid {
		l.Contact = arg.Contact
	}
	if arg.Notes.Valid {
		l.Notes = arg.Notes
	}
	if arg.Status.Valid {
		l.Status = arg.Status.String
	}
	now := time.Now()
	l.LastActivityAt = sql.NullTime{Time: now, Valid: true}
	l.UpdatedAt = now
	f.leads[arg.ID] = l
	return l, nil
}

// ----- Generation log -----

func (f *fakeQuerier) countLogInWindowLocked(userID uuid.UUID, from, to time.Time) int64 {
	var n int64
	for _, e := range f.logRows {
		if e.UserID == userID && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			n++
		}
	}
	return n
}

func (f *fakeQuerier) CountGenerationLogInWindow(_ context.Context, arg repository.CountGenerationLogInWindowParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countLogInWindowLocked(arg.UserID, arg.From, arg.To), nil
}

func (f *fakeQuerier) CreateGenerationLogEntry(_ context.Context, arg repository.CreateGenerationLogEntryParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logInsertCalls++
	f.logRows = append(f.logRows, repository.GenerationLogEntry{
		ID:        arg.ID,
		UserID:    arg.UserID,
		LeadID:    arg.LeadID,
		Purpose:   arg.Purpose,
		Content:   arg.Content,
		Context:   arg.Context,
		CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeQuerier) CreateGenerationLogEntryWithinLimit(_ context.Context, arg repository.CreateGenerationLogEntryWithinLimitParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logInsertCalls++
	if f.countLogInWindowLocked(arg.UserID, arg.From, arg.To) >= arg.Limit {
		return false, nil
	}
	f.logRows = append(f.logRows, repository.GenerationLogEntry{
		ID:        arg.ID,
		UserID:    arg.UserID,
		LeadID:    arg.LeadID,
		Purpose:   arg.Purpose,
		Content:   arg.Content,
		Context:   arg.Context,
		CreatedAt: time.Now(),
	})
	return true, nil
}

// ----- Reminders -----

func (f *fakeQuerier) CreateReminder(_ context.Context, arg repository.CreateReminderParams) (repository.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[arg.LeadID]
	if !ok || lead.UserID != arg.UserID {
		return repository.Reminder{}, sql.ErrNoRows
	}
	r := repository.Reminder{
		ID:        arg.ID,
		LeadID:    arg.LeadID,
		Note:      arg.Note,
		TriggerAt: arg.TriggerAt,
		CreatedAt: time.Now(),
	}
	f.reminders[arg.ID] = r
	return r, nil
}

func (f *fakeQuerier) ListOpenRemindersForUserBetween(_ context.Context, arg repository.ListOpenRemindersForUserBetweenParams) ([]repository.ReminderWithLead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.ReminderWithLead
	for _, r := range f.reminders {
		lead, ok := f.leads[r.LeadID]
		if !ok || lead.UserID != arg.UserID || r.IsDone {
			continue
		}
		if r.TriggerAt.Before(arg.From) || !r.TriggerAt.Before(arg.To) {
			continue
		}
		out = append(out, repository.ReminderWithLead{
			Reminder:    r,
			LeadName:    lead.Name,
			LeadContact: lead.Contact,
			LeadStatus:  lead.Status,
		})
	}
	return out, nil
}

func (f *fakeQuerier) MarkReminderDone(_ context.Context, arg repository.MarkReminderDoneParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[arg.ID]
	if !ok {
		return sql.ErrNoRows
	}
	lead, ok := f.leads[r.LeadID]
	if !ok || lead.UserID != arg.UserID {
		return sql.ErrNoRows
	}
	r.IsDone = true
	f.reminders[arg.ID] = r
	return nil
}

var _ repository.Querier = (*fakeQuerier)(nil)
