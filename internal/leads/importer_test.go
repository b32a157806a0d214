package leads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"jobtracker/internal/models"
	"jobtracker/internal/storage/sqlstore"
)

const jobsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Acme Careers</title>
  <link>https://acme.example.com/jobs</link>
  <item>
    <title>Backend Engineer (Remote)</title>
    <link>https://acme.example.com/jobs/1</link>
    <description>Build APIs in Go.</description>
    <pubDate>Mon, 29 Apr 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Site Reliability Engineer</title>
    <link>https://acme.example.com/jobs/2</link>
    <description>Hybrid role, two days in the Berlin office.</description>
    <author>ops@globex.example.com (Globex)</author>
  </item>
  <item>
    <title>Support Technician</title>
    <link>https://acme.example.com/jobs/3</link>
    <description>Onsite at our warehouse.</description>
  </item>
  <item>
    <title>Backend Engineer (Remote)</title>
    <link>https://acme.example.com/jobs/1</link>
  </item>
  <item>
    <title>No link here</title>
  </item>
</channel>
</rss>`

var fixedNow = time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC)

func newTestImporter(t *testing.T) (*Importer, *sqlstore.Store, *models.User) {
	t.Helper()
	ctx := context.Background()

	store, err := sqlstore.New(sqlstore.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)", zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	u := &models.User{Username: "alice", APIToken: "token-alice", CreatedAt: fixedNow}
	require.NoError(t, store.CreateUser(ctx, u))

	imp := NewImporter(store, zaptest.NewLogger(t),
		WithClock(func() time.Time { return fixedNow }),
		WithTimeout(5*time.Second),
	)
	return imp, store, u
}

func leadsByURL(t *testing.T, store *sqlstore.Store, ownerID int64) map[string]models.JobLead {
	t.Helper()
	list, err := store.ListLeads(context.Background(), sqlstore.OwnedBy(ownerID), false)
	require.NoError(t, err)

	out := make(map[string]models.JobLead, len(list))
	for _, l := range list {
		out[l.JobURL] = l
	}
	return out
}

func TestImportReader(t *testing.T) {
	imp, store, alice := newTestImporter(t)
	ctx := context.Background()

	res, err := imp.ImportReader(ctx, alice.ID, strings.NewReader(jobsFeed))
	require.NoError(t, err)
	assert.Equal(t, &Result{Items: 5, Created: 3, Duplicates: 1, Skipped: 1}, res)

	leads := leadsByURL(t, store, alice.ID)
	require.Len(t, leads, 3)

	backend := leads["https://acme.example.com/jobs/1"]
	assert.Equal(t, "Backend Engineer (Remote)", backend.Title)
	assert.Equal(t, "Acme Careers", backend.Company)
	assert.Equal(t, models.WorkModeRemote, backend.WorkMode)
	assert.Equal(t, models.LeadSourceRSS, backend.Source)
	assert.Equal(t, "Build APIs in Go.", backend.JDText)
	assert.True(t, backend.DiscoveredAt.Equal(time.Date(2024, 4, 29, 10, 0, 0, 0, time.UTC)))
	require.NotNil(t, backend.OwnerID)
	assert.Equal(t, alice.ID, *backend.OwnerID)

	sre := leads["https://acme.example.com/jobs/2"]
	assert.Equal(t, "Globex", sre.Company)
	assert.Equal(t, models.WorkModeHybrid, sre.WorkMode)
	assert.True(t, sre.DiscoveredAt.Equal(fixedNow))

	assert.Equal(t, models.WorkModeOnsite, leads["https://acme.example.com/jobs/3"].WorkMode)

	// a second pass only finds duplicates
	res, err = imp.ImportReader(ctx, alice.ID, strings.NewReader(jobsFeed))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 4, res.Duplicates)
}

func TestImportReaderInvalidFeed(t *testing.T) {
	imp, _, alice := newTestImporter(t)

	_, err := imp.ImportReader(context.Background(), alice.ID, strings.NewReader("not a feed"))
	assert.Error(t, err)
}

func TestImportURL(t *testing.T) {
	imp, store, alice := newTestImporter(t)

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "JobTracker-Importer/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(jobsFeed))
	}))
	defer srv.Close()

	res, err := imp.ImportURL(context.Background(), alice.ID, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Len(t, leadsByURL(t, store, alice.ID), 3)
}

func TestImportURLNotFound(t *testing.T) {
	imp, _, alice := newTestImporter(t)

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := imp.ImportURL(context.Background(), alice.ID, srv.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestGuessWorkMode(t *testing.T) {
	tests := []struct {
		text string
		want models.WorkMode
	}{
		{"Fully REMOTE team", models.WorkModeRemote},
		{"Hybrid, remote Fridays", models.WorkModeRemote},
		{"hybrid in Lisbon", models.WorkModeHybrid},
		{"On-site in Austin", models.WorkModeOnsite},
		{"onsite only", models.WorkModeOnsite},
		{"Berlin office", models.WorkModeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessWorkMode(tt.text))
		})
	}
}
