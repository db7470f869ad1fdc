package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/horizon-ai/sowlens/internal/domain"
)

// ProfileRepository handles persistence and vector search of candidate
// profiles, partitioned by pool.
type ProfileRepository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: pool, pool: pool}
}

// NewProfileRepositoryWithTx scopes the repository to an open transaction.
func NewProfileRepositoryWithTx(tx pgx.Tx) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

// CountByPool returns the number of stored profiles per pool. Pools with
// no profiles are present with a zero count.
func (r *ProfileRepository) CountByPool(ctx context.Context) (map[domain.Pool]int, error) {
	counts := make(map[domain.Pool]int, len(domain.Pools()))
	for _, p := range domain.Pools() {
		counts[p] = 0
	}

	rows, err := r.db.Query(ctx, `SELECT pool, COUNT(*) FROM candidate_profiles GROUP BY pool`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var pool string
		var n int
		if err := rows.Scan(&pool, &n); err != nil {
			return nil, err
		}
		counts[domain.Pool(pool)] = n
	}
	return counts, rows.Err()
}

// ReplaceProfiles deletes a pool's profiles and inserts the given set in
// one transaction. A failed replace rolls back, keeping the pool's
// previous vectors, and readers never observe a partially written pool.
func (r *ProfileRepository) ReplaceProfiles(ctx context.Context, pool domain.Pool, profiles []domain.IndexedProfile) error {
	if err := domain.ValidatePool(pool); err != nil {
		return err
	}

	// Already inside a caller-owned transaction.
	if r.pool == nil {
		return r.replaceProfiles(ctx, pool, profiles)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := NewProfileRepositoryWithTx(tx).replaceProfiles(ctx, pool, profiles); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *ProfileRepository) replaceProfiles(ctx context.Context, pool domain.Pool, profiles []domain.IndexedProfile) error {
	_, err := r.db.Exec(ctx, `DELETE FROM candidate_profiles WHERE pool = $1`, pool)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		return nil
	}
	return r.insertProfiles(ctx, profiles)
}

func (r *ProfileRepository) insertProfiles(ctx context.Context, profiles []domain.IndexedProfile) error {
	now := time.Now().UTC()
	for start := 0; start < len(profiles); start += insertBatchLimit {
		end := start + insertBatchLimit
		if end > len(profiles) {
			end = len(profiles)
		}

		batch := &pgx.Batch{}
		for _, ip := range profiles[start:end] {
			p := ip.Profile
			batch.Queue(
				`INSERT INTO candidate_profiles
					(profile_id, pool, resource_id, name, designation, designation_level,
					 department, base_department, skills, experience_months, hours_worked,
					 availability_pct, weekly_hours, practice_hours, summary, embedding, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
				 ON CONFLICT (profile_id) DO UPDATE
				 SET name = EXCLUDED.name,
				     designation = EXCLUDED.designation,
				     designation_level = EXCLUDED.designation_level,
				     department = EXCLUDED.department,
				     base_department = EXCLUDED.base_department,
				     skills = EXCLUDED.skills,
				     experience_months = EXCLUDED.experience_months,
				     hours_worked = EXCLUDED.hours_worked,
				     availability_pct = EXCLUDED.availability_pct,
				     weekly_hours = EXCLUDED.weekly_hours,
				     practice_hours = EXCLUDED.practice_hours,
				     summary = EXCLUDED.summary,
				     embedding = EXCLUDED.embedding`,
				p.ProfileID(), p.Pool, p.ResourceID, p.Name, p.Designation, p.DesignationLevel,
				p.Department, p.BaseDepartment, p.Skills, p.ExperienceMonths, p.HoursWorked,
				p.AvailabilityPct, p.WeeklyHours, p.PracticeHours, ip.Summary,
				pgvector.NewVector(ip.Embedding), now,
			)
		}

		br := r.db.SendBatch(ctx, batch)
		var execErr error
		for range profiles[start:end] {
			if _, err := br.Exec(); err != nil && execErr == nil {
				execErr = err
			}
		}
		if err := br.Close(); err != nil && execErr == nil {
			execErr = err
		}
		if execErr != nil {
			return execErr
		}
	}
	return nil
}

// UpsertProfiles inserts or updates profiles without clearing the pool.
func (r *ProfileRepository) UpsertProfiles(ctx context.Context, profiles []domain.IndexedProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	return r.insertProfiles(ctx, profiles)
}

// SearchProfiles returns the k profiles of a pool nearest to the query
// embedding, most similar first. Similarity is 1 - cosine distance.
func (r *ProfileRepository) SearchProfiles(ctx context.Context, embedding []float32, pool domain.Pool, k int) ([]domain.Candidate, error) {
	if err := domain.ValidatePool(pool); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 5
	}

	rows, err := r.db.Query(ctx,
		`SELECT resource_id, name, designation, designation_level, department,
		        base_department, skills, experience_months, hours_worked,
		        availability_pct, weekly_hours, practice_hours, summary,
		        1 - (embedding <=> $1) AS similarity
		 FROM candidate_profiles
		 WHERE pool = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		pgvector.NewVector(embedding), pool, k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		p := &c.Profile
		if err := rows.Scan(
			&p.ResourceID, &p.Name, &p.Designation, &p.DesignationLevel, &p.Department,
			&p.BaseDepartment, &p.Skills, &p.ExperienceMonths, &p.HoursWorked,
			&p.AvailabilityPct, &p.WeeklyHours, &p.PracticeHours, &c.Summary,
			&c.Similarity,
		); err != nil {
			return nil, err
		}
		p.Pool = pool
		results = append(results, c)
	}
	return results, rows.Err()
}
