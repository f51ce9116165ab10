package services

import (
	"context"
	"fmt"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

// GoalService validates and stores savings goals.
type GoalService struct {
	store store.GoalStore
}

func NewGoalService(s store.GoalStore) *GoalService {
	return &GoalService{store: s}
}

// CreateGoal resolves the goal name from choice and custom, validates g and
// stores it.
func (s *GoalService) CreateGoal(ctx context.Context, g core.Goal, choice, custom string) (int64, error) {
	if err := g.Validate(choice, custom); err != nil {
		return 0, err
	}
	id, err := s.store.CreateGoal(ctx, g)
	if err != nil {
		return 0, fmt.Errorf("save goal: %w", err)
	}
	return id, nil
}

func (s *GoalService) ListGoals(ctx context.Context) ([]core.Goal, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}
