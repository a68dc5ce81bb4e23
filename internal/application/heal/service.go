package heal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/ports"
)

// Service is the driver: it runs the checkers sequentially in a fixed order,
// never skipping one because an earlier one failed, persists every produced
// entry, and AND-aggregates the outcomes.
type Service struct {
	Checkers []Checker
	Store    ports.HealLogStore
	History  ports.HealHistoryRepository
	Reporter ports.Reporter
	Logger   ports.Logger
}

// Run executes one full heal pass. The returned error covers only driver
// plumbing (log initialization, entry persistence); an unhealed check is
// reported through RunReport.Overall, not as an error.
func (s *Service) Run(ctx context.Context) (domain.RunReport, error) {
	if err := s.Store.Init(); err != nil {
		return domain.RunReport{}, fmt.Errorf("initialize heal log: %w", err)
	}

	report := domain.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	s.Reporter.Banner(fmt.Sprintf("self-heal run %s", report.RunID))

	for _, checker := range s.Checkers {
		result := checker.Run(ctx)
		for i := range result.Entries {
			result.Entries[i].RunID = report.RunID
			if err := s.Store.Append(result.Entries[i]); err != nil {
				return report, fmt.Errorf("append heal log: %w", err)
			}
			if s.History != nil {
				// Best-effort mirror; the file store is the source of truth.
				if err := s.History.Save(result.Entries[i]); err != nil {
					s.Logger.Warn("history mirror save failed", map[string]interface{}{
						"checker": result.Checker,
						"error":   err.Error(),
					})
				}
			}
		}
		report.Outcomes = append(report.Outcomes, result)
	}

	if report.Overall() {
		s.Reporter.OK("all checks passed or were healed")
	} else {
		s.Reporter.Fail("%d of %d checks unresolved", report.Unresolved(), len(report.Outcomes))
	}
	return report, nil
}
