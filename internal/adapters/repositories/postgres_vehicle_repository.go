package repositories

import (
	"context"
	"convoy-route-service/internal/domain"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres-backed implementation of the VehicleRepository port.
type PostgresVehicleRepository struct{ DB *sql.DB }

func NewPostgresVehicleRepository(db *sql.DB) *PostgresVehicleRepository {
	return &PostgresVehicleRepository{DB: db}
}

// Return the vehicle specifications for the given ids.
// Fails with domain.ErrNotFound when any id is unknown so a route request
// never silently plans with a partial convoy.
func (s *PostgresVehicleRepository) GetVehicles(ctx context.Context, ids []int64) ([]domain.VehicleSpecification, error) {
	if s.DB == nil {
		return nil, errors.New("vehicle repository: DB is nil")
	}

	if len(ids) == 0 {
		return []domain.VehicleSpecification{}, nil
	}

	seen := make(map[int64]struct{}, len(ids))
	uniq := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}

	query := `
	SELECT id, model, height_cm, total_weight_kg, axle_count, max_axle_load_kg, active
	FROM vehicle_specifications
	WHERE id = ANY($1::bigint[])
	ORDER BY id;
	`

	rows, err := s.DB.QueryContext(ctx, query, uniq)
	if err != nil {
		return nil, fmt.Errorf("get vehicles: query vehicle_specifications table: %w", err)
	}
	defer rows.Close()

	vehicles := make([]domain.VehicleSpecification, 0, len(uniq))
	for rows.Next() {
		var v domain.VehicleSpecification
		var heightCm, totalWeightKg, maxAxleLoadKg sql.NullInt64

		if err := rows.Scan(&v.ID, &v.Model, &heightCm, &totalWeightKg, &v.AxleCount, &maxAxleLoadKg, &v.Active); err != nil {
			return nil, fmt.Errorf("get vehicles: scan row: %w", err)
		}

		v.HeightCm = nullableInt(heightCm)
		v.TotalWeightKg = nullableInt(totalWeightKg)
		v.MaxAxleLoadKg = nullableInt(maxAxleLoadKg)

		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get vehicles: row iteration: %w", err)
	}

	if len(vehicles) != len(uniq) {
		found := make(map[int64]struct{}, len(vehicles))
		for _, v := range vehicles {
			found[v.ID] = struct{}{}
		}
		for _, id := range uniq {
			if _, ok := found[id]; !ok {
				return nil, fmt.Errorf("get vehicles: vehicle %d: %w", id, domain.ErrNotFound)
			}
		}
	}

	return vehicles, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
