package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
)

// DefaultProgressStep is what one press of "Add Progress" adds to a goal.
var DefaultProgressStep = decimal.NewFromInt(100)

type GoalInput struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Deadline string `json:"deadline"`
}

// GoalView is a goal as the goals page shows it.
type GoalView struct {
	Goal      core.Goal
	Percent   decimal.Decimal // capped at 100
	DaysLeft  int
	Completed bool
}

func (s *TrackerService) goalView(g core.Goal) GoalView {
	return GoalView{
		Goal:      g,
		Percent:   g.Percent(),
		DaysLeft:  g.DaysLeft(core.Today(s.now())),
		Completed: g.Completed(),
	}
}

func (s *TrackerService) AddGoal(ctx context.Context, in GoalInput) (GoalView, error) {
	amount, err := core.ParsePositiveAmount(in.Amount)
	if err != nil {
		return GoalView{}, fmt.Errorf("target %q: %w", in.Amount, err)
	}
	deadline, err := core.ParseDate(in.Deadline)
	if err != nil {
		return GoalView{}, err
	}
	g, err := s.ledger.AddGoal(ctx, core.Goal{
		Name:     strings.TrimSpace(in.Name),
		Amount:   amount,
		Deadline: deadline,
	})
	if err != nil {
		return GoalView{}, err
	}
	s.logger.InfoContext(ctx, "Goal added", log.FieldOperation, log.OpCreate, log.FieldID, g.ID)
	return s.goalView(g), nil
}

// AddGoalProgress adds amount to a goal's progress; an empty amount adds
// DefaultProgressStep.
func (s *TrackerService) AddGoalProgress(ctx context.Context, id int64, amount string) (GoalView, error) {
	delta := DefaultProgressStep
	if strings.TrimSpace(amount) != "" {
		var err error
		if delta, err = core.ParsePositiveAmount(amount); err != nil {
			return GoalView{}, fmt.Errorf("progress %q: %w", amount, err)
		}
	}
	g, err := s.ledger.AddGoalProgress(ctx, id, delta)
	if err != nil {
		return GoalView{}, err
	}
	return s.goalView(g), nil
}

func (s *TrackerService) SetGoalProgress(ctx context.Context, id int64, progress string) (GoalView, error) {
	p, err := core.ParseAmount(progress)
	if err != nil {
		return GoalView{}, fmt.Errorf("progress %q: %w", progress, err)
	}
	g, err := s.ledger.SetGoalProgress(ctx, id, p)
	if err != nil {
		return GoalView{}, err
	}
	return s.goalView(g), nil
}

func (s *TrackerService) DeleteGoal(ctx context.Context, id int64) error {
	if err := s.ledger.DeleteGoal(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Goal deleted", log.FieldOperation, log.OpDelete, log.FieldID, id)
	return nil
}

func (s *TrackerService) Goals(ctx context.Context) ([]GoalView, error) {
	goals, err := s.ledger.Goals(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, s.goalView(g))
	}
	return out, nil
}
