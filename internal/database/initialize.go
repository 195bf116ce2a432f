package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pepe57/wexcommerce/internal/models"
)

// Routine is an extra named initialization step run by Initialize
// alongside the per-model reconciliation, e.g. seed-data cleanup.
type Routine struct {
	Name string
	Run  func(ctx context.Context) error
}

// Initialize converges the whole database: for every registered model
// it ensures the collection and its standard indexes, repairs the TTL
// index, and recreates the text index; then it runs any extra
// routines. Routines are failure-isolated: one failing never stops the
// others, and a panicking routine is caught here. Initialize returns
// true only when every routine succeeded; on any failure it logs a
// single aggregate line and returns false, leaving the per-routine
// logs as the diagnostic channel.
func (m *Manager) Initialize(ctx context.Context, extra ...Routine) bool {
	var outcomes []Outcome

	for _, model := range models.All() {
		outcomes = append(outcomes,
			m.runRoutine(ctx, model.Name+".collection", func(ctx context.Context) error {
				return m.EnsureCollection(ctx, model, true)
			}))

		if model.TTL != nil {
			outcomes = append(outcomes,
				m.runRoutine(ctx, model.Name+".ttl", func(ctx context.Context) error {
					return m.CheckAndUpdateTTL(ctx, model)
				}))
		}

		if model.Text != nil {
			// Text index failures are swallowed inside EnsureTextIndex.
			outcomes = append(outcomes,
				m.runRoutine(ctx, model.Name+".text", func(ctx context.Context) error {
					m.EnsureTextIndex(ctx, model)
					return nil
				}))
		}
	}

	for _, routine := range extra {
		outcomes = append(outcomes, m.runRoutine(ctx, routine.Name, routine.Run))
	}

	ok := true
	for _, outcome := range outcomes {
		if !outcome.OK() {
			ok = false
		}
	}

	if !ok {
		m.logger.Error("Some parts of the database failed to initialize")
		return false
	}

	return true
}

// runRoutine executes one routine, converting errors and panics into
// an Outcome so Initialize itself never fails abruptly.
func (m *Manager) runRoutine(ctx context.Context, name string, run func(ctx context.Context) error) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			m.logger.Error("initialization routine panicked",
				zap.String("routine", name), zap.Any("panic", r))
			outcome = Outcome{Routine: name, Kind: OutcomeFatal, Err: err}
		}
	}()

	if err := run(ctx); err != nil {
		m.logger.Error("initialization routine failed",
			zap.String("routine", name), zap.Error(err))
		return Outcome{Routine: name, Kind: OutcomeFatal, Err: err}
	}

	return Outcome{Routine: name, Kind: OutcomeOK}
}
