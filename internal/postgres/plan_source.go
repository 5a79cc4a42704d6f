package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/envioexpress/platform/pkg/plan"
)

// PlanSource loads the plan catalog from the plans table seeded by the
// migrations. The catalog built from it is immutable for the process
// lifetime; changing tiers means a migration plus a restart.
type PlanSource struct {
	pool *pgxpool.Pool
}

func NewPlanSource(pool *pgxpool.Pool) *PlanSource {
	return &PlanSource{pool: pool}
}

func (s *PlanSource) Load(ctx context.Context) ([]plan.Plan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, price_amount, price_currency,
		       billing_interval, features, limits, provider_price_id, active
		FROM plans
		ORDER BY price_amount`)
	if err != nil {
		return nil, fmt.Errorf("load plans: %w", err)
	}
	defer rows.Close()

	var plans []plan.Plan
	for rows.Next() {
		var (
			p               plan.Plan
			interval        string
			featuresJSON    []byte
			limitsJSON      []byte
			providerPriceID *string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description,
			&p.Price.Amount, &p.Price.Currency, &interval,
			&featuresJSON, &limitsJSON, &providerPriceID, &p.Active); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}

		p.Interval = plan.BillingInterval(interval)
		if len(featuresJSON) > 0 {
			if err := json.Unmarshal(featuresJSON, &p.Features); err != nil {
				return nil, fmt.Errorf("plan %s features: %w", p.ID, err)
			}
		}
		if len(limitsJSON) > 0 {
			if err := json.Unmarshal(limitsJSON, &p.Limits); err != nil {
				return nil, fmt.Errorf("plan %s limits: %w", p.ID, err)
			}
		}
		if providerPriceID != nil {
			p.ProviderPriceID = *providerPriceID
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
