package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"jobtracker/internal/models"
)

var exportHeader = []string{"Company", "Title", "Status", "Follow-up", "Next action", "Updated"}

// ExportCSV writes one row per application visible to actor, most recently
// updated first.
func (s *Service) ExportCSV(ctx context.Context, actor *models.User, w io.Writer) error {
	details, err := s.store.ListApplications(ctx, scopeOf(actor), models.NormalizeFilter("", "", "", "", ""), s.Now())
	if err != nil {
		return fmt.Errorf("export applications: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, d := range details {
		followUp := ""
		if day := d.Application.FollowUpOn(s.loc); day != nil {
			followUp = day.String()
		}

		row := []string{
			d.Job.Company,
			d.Job.Title,
			d.Application.Status.Label(),
			followUp,
			d.Application.NextAction,
			d.Application.UpdatedAt.In(s.loc).Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
