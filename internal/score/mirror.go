package score

import (
	"context"
	"errors"
	"fmt"

	"attimuite/internal/domain"
	"attimuite/internal/ports"
)

// Mirror keeps a local copy of a remote store. Reads prefer Remote and fall
// back to Local when Remote fails or has nothing; writes go to both.
type Mirror struct {
	Local  ports.ScoreStore
	Remote ports.ScoreStore
}

func (m Mirror) Load(ctx context.Context) (domain.Score, error) {
	if m.Remote != nil {
		s, err := m.Remote.Load(ctx)
		if err == nil {
			return s, nil
		}
		if m.Local == nil {
			return domain.Score{}, err
		}
	}
	if m.Local == nil {
		return domain.Score{}, ErrNotFound
	}
	return m.Local.Load(ctx)
}

func (m Mirror) Save(ctx context.Context, s domain.Score) error {
	var errs []error
	if m.Local != nil {
		if err := m.Local.Save(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("local: %w", err))
		}
	}
	if m.Remote != nil {
		if err := m.Remote.Save(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("remote: %w", err))
		}
	}
	return errors.Join(errs...)
}
