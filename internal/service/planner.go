package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/mealplanner/backend/internal/models"
)

// PlanGap marks one (date, slot) the generator could not fill.
type PlanGap struct {
	Date time.Time       `json:"date"`
	Slot models.MealSlot `json:"slot"`
}

// GenerationReport summarizes one annual generation run. Filled assignments
// and gaps partition the year's (date, slot) combinations exactly.
type GenerationReport struct {
	Year        int       `json:"year"`
	TotalSlots  int       `json:"total_slots"`
	FilledSlots int       `json:"filled_slots"`
	Gaps        []PlanGap `json:"gaps"`
}

// PlanGenerator pre-generates a full year of meal assignments. It runs as a
// single sequential job: dates ascending, slots in the fixed
// BREAKFAST/LUNCH/DINNER/SNACK order, so cache write-backs and scoring stay
// deterministic run-to-run.
type PlanGenerator struct {
	selector    *MealSelector
	assignments AssignmentStore
}

func NewPlanGenerator(selector *MealSelector, assignments AssignmentStore) *PlanGenerator {
	return &PlanGenerator{
		selector:    selector,
		assignments: assignments,
	}
}

// GenerateYear deletes the year's existing assignments for the plan owner and
// regenerates every (date, slot). A nil userID produces the shared global
// plan owned by the system user. Slot failures are isolated: an unfillable
// slot is recorded as a gap row and the run continues.
func (g *PlanGenerator) GenerateYear(ctx context.Context, year int, userID *uuid.UUID) (*GenerationReport, error) {
	owner := models.SystemUserID
	if userID != nil {
		owner = *userID
	}

	if err := g.assignments.DeleteByYear(ctx, owner, year); err != nil {
		return nil, err
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	report := &GenerationReport{Year: year}

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		for _, slot := range models.AllMealSlots {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.TotalSlots++

			if _, err := g.selector.Select(ctx, owner, date, slot); err != nil {
				log.Printf("plan generator: no meal for %s %s: %v", date.Format("2006-01-02"), slot, err)
				if _, _, gapErr := g.assignments.CreateIfAbsent(ctx, owner, date, slot, year, nil); gapErr != nil {
					log.Printf("plan generator: failed to record gap for %s %s: %v", date.Format("2006-01-02"), slot, gapErr)
				}
				report.Gaps = append(report.Gaps, PlanGap{Date: date, Slot: slot})
				continue
			}
			report.FilledSlots++
		}
	}

	return report, nil
}
