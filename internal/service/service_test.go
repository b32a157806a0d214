package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"jobtracker/internal/models"
	"jobtracker/internal/storage/redis"
	"jobtracker/internal/storage/sqlstore"
	"jobtracker/internal/tracker"
)

var fixedNow = time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	store *sqlstore.Store
	alice *models.User
	bob   *models.User
	admin *models.User
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	store, err := sqlstore.New(sqlstore.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
		WithLogger(logger),
	}, opts...)
	svc := New(store, opts...)

	f := &fixture{svc: svc, store: store}
	f.alice = mustUser(t, svc, NewUser{Username: "alice", Email: "alice@example.com", Password: "password123"})
	f.bob = mustUser(t, svc, NewUser{Username: "bob", Email: "bob@example.com", Password: "password123"})
	f.admin = mustUser(t, svc, NewUser{Username: "admin", Password: "password123", IsSuperuser: true})
	return f
}

func mustUser(t *testing.T, svc *Service, in NewUser) *models.User {
	t.Helper()
	u, err := svc.CreateUser(context.Background(), in)
	require.NoError(t, err)
	return u
}

func (f *fixture) create(t *testing.T, owner *models.User, in NewApplication) *ApplicationResult {
	t.Helper()
	if in.Company == "" {
		in.Company = "Acme"
	}
	if in.Title == "" {
		in.Title = "Engineer"
	}
	res, err := f.svc.Create(context.Background(), owner, in)
	require.NoError(t, err)
	return res
}

func TestQuickActionAppliedSetsTimestamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, f.alice, NewApplication{})
	require.Equal(t, models.StatusWishlist, created.Application.Status)

	res, err := f.svc.QuickAction(ctx, f.alice, created.Application.ID, QuickAction{Status: tracker.Some("APPLIED")})
	require.NoError(t, err)

	assert.Equal(t, models.StatusApplied, res.Application.Status)
	require.NotNil(t, res.Application.AppliedAt)
	assert.True(t, res.Application.AppliedAt.Equal(fixedNow))
	require.NotNil(t, res.Application.FollowUpAt)
	assert.True(t, res.Application.FollowUpAt.Equal(fixedNow.Add(72*time.Hour)))

	stored, err := f.svc.Get(ctx, f.alice, created.Application.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, stored.Application.Status)
	assert.True(t, stored.Application.FollowUpAt.Equal(fixedNow.Add(72*time.Hour)))
}

func TestPatchTerminalLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, f.alice, NewApplication{Status: "ACCEPTED"})
	id := created.Application.ID
	back := tracker.ChangeSet{Status: tracker.Some("WISHLIST")}

	_, err := f.svc.Patch(ctx, f.alice, id, back, false)
	assert.ErrorIs(t, err, tracker.ErrTerminalLocked)

	_, err = f.svc.Patch(ctx, f.alice, id, back, true)
	assert.ErrorIs(t, err, tracker.ErrTerminalLocked, "force needs privilege")

	_, err = f.svc.Patch(ctx, f.admin, id, back, false)
	assert.ErrorIs(t, err, tracker.ErrTerminalLocked, "privilege needs force")

	stored, err := f.svc.Get(ctx, f.alice, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, stored.Application.Status)

	res, err := f.svc.Patch(ctx, f.admin, id, back, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWishlist, res.Application.Status)
}

func TestPatchAliasesPersistBothCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, f.alice, NewApplication{Location: "Berlin", JobURL: "https://example.com/a"})

	cs := tracker.ChangeSet{
		JobURL:   tracker.Some("https://example.com/b"),
		Location: tracker.Some("Remote"),
		Company:  tracker.Some("  Globex "),
	}
	_, err := f.svc.Patch(ctx, f.alice, created.Application.ID, cs, false)
	require.NoError(t, err)

	stored, err := f.svc.Get(ctx, f.alice, created.Application.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/b", stored.Application.JobURL)
	assert.Equal(t, "https://example.com/b", stored.Job.JobURL)
	assert.Equal(t, "Remote", stored.Application.LocationText)
	assert.Equal(t, "Remote", stored.Job.Location)
	assert.Equal(t, "Globex", stored.Job.Company)
}

func TestPatchValidationDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, f.alice, NewApplication{})

	cs := tracker.ChangeSet{Notes: tracker.Some("new notes"), Title: tracker.Some("  ")}
	_, err := f.svc.Patch(ctx, f.alice, created.Application.ID, cs, false)
	var verr *tracker.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")

	stored, err := f.svc.Get(ctx, f.alice, created.Application.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Application.Notes)

	_, err = f.svc.Patch(ctx, f.alice, created.Application.ID, tracker.ChangeSet{}, false)
	assert.ErrorIs(t, err, tracker.ErrNoUpdates)
}

func TestOwnershipIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, f.alice, NewApplication{})
	id := created.Application.ID

	_, err := f.svc.Get(ctx, f.bob, id)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Patch(ctx, f.bob, id, tracker.ChangeSet{Notes: tracker.Some("x")}, false)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.BumpFollowUp(ctx, f.bob, id, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.bob, id), ErrNotFound)

	_, err = f.svc.Get(ctx, f.admin, id)
	assert.NoError(t, err)
}

func editForm(d models.ApplicationDetail) EditForm {
	return EditForm{
		Status:     string(d.Application.Status),
		NextAction: d.Application.NextAction,
		Notes:      d.Application.Notes,
		JobURL:     d.Job.JobURL,
		Company:    d.Job.Company,
		Title:      d.Job.Title,
		Location:   d.Job.Location,
	}
}

func TestEditFollowUpSemantics(t *testing.T) {
	ctx := context.Background()

	t.Run("empty follow-up without one lets the default fire", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t, f.alice, NewApplication{})

		form := editForm(created.ApplicationDetail)
		form.Status = "APPLIED"
		res, err := f.svc.Edit(ctx, f.alice, created.Application.ID, form)
		require.NoError(t, err)
		require.NotNil(t, res.Application.FollowUpAt)
		assert.True(t, res.Application.FollowUpAt.Equal(fixedNow.Add(72*time.Hour)))
	})

	t.Run("empty follow-up clears the existing one", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t, f.alice, NewApplication{Status: "APPLIED"})
		require.NotNil(t, created.Application.FollowUpAt)

		form := editForm(created.ApplicationDetail)
		form.Notes = "cleared"
		res, err := f.svc.Edit(ctx, f.alice, created.Application.ID, form)
		require.NoError(t, err)
		assert.Nil(t, res.Application.FollowUpAt)

		stored, err := f.svc.Get(ctx, f.alice, created.Application.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.Application.FollowUpAt)
	})

	t.Run("same date keeps the stored time", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t, f.alice, NewApplication{Status: "APPLIED"})
		due := *created.Application.FollowUpAt

		form := editForm(created.ApplicationDetail)
		form.FollowUpOn = due.Format(models.DateLayout)
		form.NextAction = "email recruiter"
		res, err := f.svc.Edit(ctx, f.alice, created.Application.ID, form)
		require.NoError(t, err)
		assert.True(t, res.Application.FollowUpAt.Equal(due))
	})

	t.Run("datetime input", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t, f.alice, NewApplication{})

		form := editForm(created.ApplicationDetail)
		form.Status = "APPLIED"
		form.FollowUpOn = "2024-05-11T14:00"
		res, err := f.svc.Edit(ctx, f.alice, created.Application.ID, form)
		require.NoError(t, err)
		assert.True(t, res.Application.FollowUpAt.Equal(time.Date(2024, 5, 11, 14, 0, 0, 0, time.UTC)))
		assert.True(t, res.Application.AppliedAt.Equal(fixedNow))
	})
}

func TestQuickActionFollowUps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.create(t, f.alice, NewApplication{}).Application.ID

	res, err := f.svc.QuickAction(ctx, f.alice, id, QuickAction{FollowUpObject: true, Preset: "next_week"})
	require.NoError(t, err)
	assert.True(t, res.Application.FollowUpAt.Equal(time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)))

	res, err = f.svc.QuickAction(ctx, f.alice, id, QuickAction{FollowUpObject: true, Preset: "date", Date: "2024-05-05"})
	require.NoError(t, err)
	assert.True(t, res.Application.FollowUpAt.Equal(time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC)))

	res, err = f.svc.QuickAction(ctx, f.alice, id, QuickAction{FollowUpAt: tracker.Some("2024-05-06T08:30")})
	require.NoError(t, err)
	assert.True(t, res.Application.FollowUpAt.Equal(time.Date(2024, 5, 6, 8, 30, 0, 0, time.UTC)))

	res, err = f.svc.QuickAction(ctx, f.alice, id, QuickAction{Clear: true, Status: tracker.Some("APPLIED")})
	require.NoError(t, err)
	assert.Nil(t, res.Application.FollowUpAt, "clear wins over the default")
	assert.NotNil(t, res.Application.AppliedAt)

	_, err = f.svc.QuickAction(ctx, f.alice, id, QuickAction{FollowUpObject: true, Preset: "someday"})
	assert.ErrorIs(t, err, tracker.ErrUnknownPreset)

	_, err = f.svc.QuickAction(ctx, f.alice, id, QuickAction{FollowUpObject: true, Preset: "today", FollowUpAt: tracker.Some("2024-05-06T08:30")})
	var verr *tracker.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = f.svc.QuickAction(ctx, f.alice, id, QuickAction{FollowUpAt: tracker.Some("soon")})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "follow_up_at")

	res, err = f.svc.QuickAction(ctx, f.alice, id, QuickAction{Notes: tracker.Some("Followed up with recruiter.")})
	require.NoError(t, err)
	assert.Equal(t, "Followed up with recruiter.", res.Application.Notes)

	_, err = f.svc.QuickAction(ctx, f.alice, id, QuickAction{Status: tracker.Some("")})
	assert.ErrorIs(t, err, tracker.ErrNoUpdates)
}

func TestBumpAndSetFollowUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.create(t, f.alice, NewApplication{}).Application.ID

	res, err := f.svc.BumpFollowUp(ctx, f.alice, id, 3)
	require.NoError(t, err)
	assert.True(t, res.Application.FollowUpAt.Equal(fixedNow.Add(3*24*time.Hour)))

	res, err = f.svc.BumpFollowUp(ctx, f.alice, id, 2)
	require.NoError(t, err)
	assert.True(t, res.Application.FollowUpAt.Equal(fixedNow.Add(5*24*time.Hour)))

	_, err = f.svc.BumpFollowUp(ctx, f.alice, id, 0)
	assert.ErrorIs(t, err, tracker.ErrNoUpdates)

	_, err = f.svc.BumpFollowUp(ctx, f.alice, id, 200000)
	var verr *tracker.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "days")

	res, err = f.svc.SetFollowUp(ctx, f.alice, id, "2024-06-01T09:00")
	require.NoError(t, err)
	assert.True(t, res.Application.FollowUpAt.Equal(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)))

	res, err = f.svc.SetFollowUp(ctx, f.alice, id, "")
	require.NoError(t, err)
	assert.Nil(t, res.Application.FollowUpAt)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), f.alice, NewApplication{
		Company: "   ",
		Title:   "Engineer",
		JobURL:  "ftp://example.com",
		Status:  "HIRED",
	})

	var verr *tracker.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This field is required.", verr.Fields["company"])
	assert.Equal(t, "Enter a valid URL.", verr.Fields["job_url"])
	assert.Equal(t, "Select a valid choice.", verr.Fields["status"])
	assert.NotContains(t, verr.Fields, "title")
}

func TestDeleteKeepsSharedLead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	solo := f.create(t, f.alice, NewApplication{Company: "Solo"})
	require.NoError(t, f.svc.Delete(ctx, f.alice, solo.Application.ID))
	_, err := f.store.GetLead(ctx, sqlstore.Scope{AllOwners: true}, solo.Job.ID)
	assert.ErrorIs(t, err, sqlstore.ErrNotFound)

	shared := f.create(t, f.alice, NewApplication{Company: "Shared"})
	other := &models.Application{JobID: shared.Job.ID, OwnerID: f.bob.ID, Status: models.StatusWishlist, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	require.NoError(t, f.store.CreateApplication(ctx, other))

	require.NoError(t, f.svc.Delete(ctx, f.alice, shared.Application.ID))
	_, err = f.store.GetLead(ctx, sqlstore.Scope{AllOwners: true}, shared.Job.ID)
	assert.NoError(t, err)
}

func TestConvertAndArchiveLead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ownerID := f.alice.ID
	lead := &models.JobLead{
		OwnerID: &ownerID, Company: "Initech", Title: "SRE", Location: "Austin",
		WorkMode: models.WorkModeOnsite, Source: models.LeadSourceRSS, JobURL: "https://initech.example/jobs/1",
		DiscoveredAt: fixedNow, CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}
	require.NoError(t, f.store.CreateLead(ctx, lead))

	_, err := f.svc.ConvertLead(ctx, f.bob, lead.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	res, err := f.svc.ConvertLead(ctx, f.alice, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWishlist, res.Application.Status)
	assert.Equal(t, "https://initech.example/jobs/1", res.Application.JobURL)
	assert.Equal(t, "Austin", res.Application.LocationText)

	_, err = f.svc.ConvertLead(ctx, f.alice, lead.ID)
	assert.ErrorIs(t, err, ErrDuplicate)

	archived, err := f.svc.ArchiveLead(ctx, f.alice, lead.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)

	active, err := f.svc.ListLeads(ctx, f.alice, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	old, err := f.svc.ListLeads(ctx, f.alice, true)
	require.NoError(t, err)
	assert.Len(t, old, 1)
}

func TestConvertClaimsUnownedLead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	lead := &models.JobLead{Company: "Legacy", Title: "Dev", WorkMode: models.WorkModeUnknown, Source: models.LeadSourceManual,
		DiscoveredAt: fixedNow, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	require.NoError(t, f.store.CreateLead(ctx, lead))

	res, err := f.svc.ConvertLead(ctx, f.admin, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, res.Application.OwnerID)

	stored, err := f.store.GetLead(ctx, sqlstore.OwnedBy(f.admin.ID), lead.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.OwnerID)
	assert.Equal(t, f.admin.ID, *stored.OwnerID)
}

func TestFollowUpItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := f.create(t, f.alice, NewApplication{Status: "APPLIED"})
	appFollowUp := *created.Application.FollowUpAt

	item, err := f.svc.CreateFollowUp(ctx, f.alice, created.Application.ID, "2024-05-03", "send portfolio")
	require.NoError(t, err)
	assert.Equal(t, "Acme", item.Company)

	_, err = f.svc.CreateFollowUp(ctx, f.bob, created.Application.ID, "2024-05-03", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.CreateFollowUp(ctx, f.alice, created.Application.ID, "", "")
	var verr *tracker.ValidationError
	require.ErrorAs(t, err, &verr)

	done, err := f.svc.UpdateFollowUp(ctx, f.alice, item.ID, tracker.FollowUpUpdate{IsCompleted: tracker.Some(true)})
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	require.NotNil(t, done.CompletedAt)

	reopened, err := f.svc.UpdateFollowUp(ctx, f.alice, item.ID, tracker.FollowUpUpdate{IsCompleted: tracker.Some(false)})
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)

	_, err = f.svc.UpdateFollowUp(ctx, f.bob, item.ID, tracker.FollowUpUpdate{Note: tracker.Some("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := f.svc.Get(ctx, f.alice, created.Application.ID)
	require.NoError(t, err)
	assert.True(t, stored.Application.FollowUpAt.Equal(appFollowUp))

	items, err := f.svc.ListFollowUps(ctx, f.alice, created.Application.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, f.svc.DeleteFollowUp(ctx, f.alice, item.ID))
	assert.ErrorIs(t, f.svc.DeleteFollowUp(ctx, f.alice, item.ID), ErrNotFound)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.svc.Profile(ctx, f.alice)
	require.NoError(t, err)
	assert.True(t, p.EmailRemindersOn)
	assert.Equal(t, "09:00", p.DailyReminderTime)

	again, err := f.svc.Profile(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, again.UserID)

	update := *p
	update.FullName = "Alice Liddell"
	update.ReminderDaysBefore = 2
	saved, err := f.svc.UpdateProfile(ctx, f.alice, update)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", saved.FullName)

	bad := *p
	bad.DailyReminderTime = "9am"
	bad.ReminderDaysBefore = 45
	bad.ThemePreference = "NEON"
	bad.Timezone = "Mars/Base"
	bad.LinkedInURL = "not-a-url"
	_, err = f.svc.UpdateProfile(ctx, f.alice, bad)
	var verr *tracker.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"daily_reminder_time", "reminder_days_before", "theme_preference", "timezone", "linkedin_url"} {
		assert.Contains(t, verr.Fields, field)
	}

	lo, hi := 100, 50
	bad = *p
	bad.SalaryExpectationMin = &lo
	bad.SalaryExpectationMax = &hi
	_, err = f.svc.UpdateProfile(ctx, f.alice, bad)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "salary_expectation_max")
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, u.APIToken)

	_, err = f.svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := f.svc.Authenticate(ctx, u.APIToken)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, got.ID)

	_, err = f.svc.Authenticate(ctx, "bogus")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeedDemoUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.SeedDemoUser(ctx, "e2e", "e2e-pass", "e2e@example.com")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.False(t, res.User.Privileged())
	assert.Equal(t, "Example Co", res.Application.Job.Company)
	assert.Equal(t, models.StatusApplied, res.Application.Application.Status)

	again, err := f.svc.SeedDemoUser(ctx, "e2e", "new-pass", "e2e@example.com")
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.Application.Application.ID, again.Application.Application.ID)

	_, err = f.svc.Login(ctx, "e2e", "new-pass")
	assert.NoError(t, err)

	_, err = f.svc.SeedDemoUser(ctx, "admin", "new-pass", "")
	assert.ErrorIs(t, err, ErrPrivilegedAccount)
	_, err = f.svc.Login(ctx, "admin", "password123")
	assert.NoError(t, err, "staff password untouched")
}

func TestNewUsersGetDefaultProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.store.GetProfile(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.True(t, p.EmailRemindersOn)
	assert.Equal(t, 0, p.ReminderDaysBefore)

	res, err := f.svc.SeedDemoUser(ctx, "e2e", "e2e-pass", "e2e@example.com")
	require.NoError(t, err)
	_, err = f.store.GetProfile(ctx, res.User.ID)
	require.NoError(t, err)

	// accounts from before profiles came with the user get one on refresh
	legacy := &models.User{Username: "legacy", Email: "legacy@example.com", APIToken: "legacy-token", CreatedAt: fixedNow}
	require.NoError(t, f.store.CreateUser(ctx, legacy))
	_, err = f.store.GetProfile(ctx, legacy.ID)
	require.ErrorIs(t, err, sqlstore.ErrNotFound)

	_, err = f.svc.SeedDemoUser(ctx, "legacy", "legacy-pass", "legacy@example.com")
	require.NoError(t, err)
	_, err = f.store.GetProfile(ctx, legacy.ID)
	require.NoError(t, err)

	targets, err := f.store.ReminderTargets(ctx)
	require.NoError(t, err)
	var names []string
	for _, tg := range targets {
		names = append(names, tg.Username)
	}
	assert.Equal(t, []string{"alice", "bob", "admin", "e2e", "legacy"}, names)
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, f.alice, NewApplication{Company: "Acme", Title: "Engineer", Status: "APPLIED"})
	f.create(t, f.bob, NewApplication{Company: "Hidden", Title: "Other"})

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportCSV(ctx, f.alice, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Company", "Title", "Status", "Follow-up", "Next action", "Updated"}, rows[0])
	assert.Equal(t, []string{"Acme", "Engineer", "Applied", "2024-05-04", "", "2024-05-01T09:15:00Z"}, rows[1])

	buf.Reset()
	require.NoError(t, f.svc.ExportCSV(ctx, f.admin, &buf))
	rows, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestSidebarCountsCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cache, err := redis.New(mr.Addr(), "", 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	f := newFixture(t, WithCountsCache(cache))
	created := f.create(t, f.alice, NewApplication{})

	counts, err := f.svc.SidebarCounts(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Total)
	assert.Equal(t, 1, counts.None)
	assert.True(t, mr.Exists(redis.SidebarCountsKey(f.alice.ID)))

	_, err = f.svc.QuickAction(ctx, f.alice, created.Application.ID, QuickAction{Status: tracker.Some("APPLIED")})
	require.NoError(t, err)
	assert.False(t, mr.Exists(redis.SidebarCountsKey(f.alice.ID)))

	counts, err = f.svc.SidebarCounts(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Statuses[models.StatusApplied])
	assert.Equal(t, 1, counts.Due7)

	_, err = f.svc.SidebarCounts(ctx, f.admin)
	require.NoError(t, err)
	assert.False(t, mr.Exists(redis.SidebarCountsKey(f.admin.ID)))
}

func TestCachedCountsFollowTheClock(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cache, err := redis.New(mr.Addr(), "", 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	clock := fixedNow
	f := newFixture(t, WithCountsCache(cache), WithClock(func() time.Time { return clock }))
	f.create(t, f.alice, NewApplication{Status: "APPLIED"})

	counts, err := f.svc.SidebarCounts(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Overdue)
	assert.Equal(t, 1, counts.Due7)
	require.True(t, mr.Exists(redis.SidebarCountsKey(f.alice.ID)))

	// the default follow-up passes without any write
	clock = fixedNow.Add(4 * 24 * time.Hour)

	counts, err = f.svc.SidebarCounts(ctx, f.alice)
	require.NoError(t, err)
	assert.True(t, mr.Exists(redis.SidebarCountsKey(f.alice.ID)))
	assert.Equal(t, 1, counts.Total)
	assert.Equal(t, 1, counts.Statuses[models.StatusApplied])
	assert.Equal(t, 1, counts.Overdue)
	assert.Equal(t, 0, counts.Due7)
}
