// Package leads imports job leads from RSS and Atom job feeds.
package leads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"jobtracker/internal/models"
)

// Store is the part of the lead store the importer writes to.
type Store interface {
	CreateLead(ctx context.Context, lead *models.JobLead) error
	LeadURLExists(ctx context.Context, ownerID int64, jobURL string) (bool, error)
}

// Result counts what one import did with the feed's items.
type Result struct {
	Items      int
	Created    int
	Duplicates int
	Skipped    int
}

type Importer struct {
	store   Store
	parser  *gofeed.Parser
	fetcher *fetcher
	now     func() time.Time
	logger  *zap.Logger
}

type Option func(*Importer)

func WithTimeout(d time.Duration) Option {
	return func(i *Importer) {
		i.fetcher.httpClient.Timeout = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		i.now = now
	}
}

func NewImporter(store Store, logger *zap.Logger, opts ...Option) *Importer {
	i := &Importer{
		store:   store,
		parser:  gofeed.NewParser(),
		fetcher: newFetcher(30*time.Second, logger),
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ImportURL downloads feedURL and imports its items for ownerID.
func (i *Importer) ImportURL(ctx context.Context, ownerID int64, feedURL string) (*Result, error) {
	body, err := i.fetcher.fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	return i.ImportReader(ctx, ownerID, bytes.NewReader(body))
}

// ImportReader imports every item of the feed in r whose link is not
// already one of the owner's leads.
func (i *Importer) ImportReader(ctx context.Context, ownerID int64, r io.Reader) (*Result, error) {
	feed, err := i.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	res := &Result{Items: len(feed.Items)}
	seen := make(map[string]bool, len(feed.Items))
	now := i.now().UTC()

	for _, item := range feed.Items {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		lead := leadFromItem(feed, item, ownerID, now)
		if lead == nil {
			res.Skipped++
			continue
		}

		if seen[lead.JobURL] {
			res.Duplicates++
			continue
		}
		seen[lead.JobURL] = true

		exists, err := i.store.LeadURLExists(ctx, ownerID, lead.JobURL)
		if err != nil {
			return res, err
		}
		if exists {
			res.Duplicates++
			continue
		}

		if err := i.store.CreateLead(ctx, lead); err != nil {
			return res, err
		}
		res.Created++
	}

	i.logger.Info("feed imported",
		zap.Int64("owner_id", ownerID),
		zap.String("feed", feed.Title),
		zap.Int("items", res.Items),
		zap.Int("created", res.Created),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("skipped", res.Skipped),
	)

	return res, nil
}

// leadFromItem returns nil for items without a link or a title.
func leadFromItem(feed *gofeed.Feed, item *gofeed.Item, ownerID int64, now time.Time) *models.JobLead {
	link := strings.TrimSpace(item.Link)
	title := strings.TrimSpace(item.Title)
	if link == "" || title == "" {
		return nil
	}

	company := strings.TrimSpace(feed.Title)
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		company = strings.TrimSpace(item.Author.Name)
	}

	description := item.Description
	if description == "" {
		description = item.Content
	}

	discovered := now
	if item.PublishedParsed != nil {
		discovered = item.PublishedParsed.UTC()
	}

	owner := ownerID
	return &models.JobLead{
		OwnerID:      &owner,
		Title:        truncate(title, 200),
		Company:      truncate(company, 200),
		WorkMode:     GuessWorkMode(title + " " + description),
		Source:       models.LeadSourceRSS,
		JobURL:       link,
		JDText:       description,
		DiscoveredAt: discovered,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// GuessWorkMode looks for remote, hybrid and on-site markers, in that order.
func GuessWorkMode(text string) models.WorkMode {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "remote"):
		return models.WorkModeRemote
	case strings.Contains(lower, "hybrid"):
		return models.WorkModeHybrid
	case strings.Contains(lower, "on-site"), strings.Contains(lower, "onsite"):
		return models.WorkModeOnsite
	default:
		return models.WorkModeUnknown
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
