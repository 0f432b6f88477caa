// Package postgres implements repository.Store on database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	if db == nil {
		panic("postgres store requires a database handle")
	}
	return &Store{db: db}
}

func (s *Store) Scoped(tenantID string) (*repository.Repositories, error) {
	if tenantID == "" {
		return nil, repository.ErrMissingTenant
	}
	return newRepositories(newTenantQuerier(s.db, tenantID)), nil
}

func (s *Store) ExecTx(ctx context.Context, tenantID string, fn func(*repository.Repositories) error) error {
	if tenantID == "" {
		return repository.ErrMissingTenant
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(newRepositories(newTenantQuerier(tx, tenantID))); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func newRepositories(q *tenantQuerier) *repository.Repositories {
	return &repository.Repositories{
		TenantID:        q.tenantID,
		Customers:       &customerRepo{q},
		Products:        &productRepo{q},
		Orders:          &orderRepo{q},
		Deliveries:      &deliveryRepo{q},
		Reviews:         &reviewRepo{q},
		Promotions:      &promotionRepo{q},
		AutomationRules: &ruleRepo{q},
		Notifications:   &notificationRepo{q},
		Analytics:       &analyticsRepo{q},
	}
}
