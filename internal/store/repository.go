package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oin/wood-inspector/internal/dbpool"
)

// Repository writes inspection data in a single transaction per
// inspection, using idempotent upserts so a retried write never
// double-counts or regresses a verdict.
type Repository struct {
	pool *dbpool.Pool
}

func NewRepository(pool *dbpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveInspection writes an inspection, its detail rows, its single
// defect-flags result row, and its presentation rows in one
// transaction. The inspection and result rows are upserted with an OR
// on their boolean flags and a GREATEST on their ordinal/length
// columns, so re-processing the same inspection ID never loses a
// previously recorded defect (spec §8's idempotent-aggregation
// property). Presentation rows are replaced wholesale: every existing
// row for the inspection is deleted and the new set inserted in the
// same transaction, matching spec §4.9 step 7.
func (r *Repository) SaveInspection(ctx context.Context, insp Inspection, details []InspectionDetail, result InspectionResult, pres []Presentation) error {
	return r.pool.WithRetry(ctx, func(ctx context.Context) error {
		tx, err := r.pool.DB().BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("store: begin tx: %w", err)
		}
		defer tx.Rollback()

		if err := upsertInspection(ctx, tx, insp); err != nil {
			return err
		}
		for _, d := range details {
			if err := insertDetail(ctx, tx, d); err != nil {
				return err
			}
		}
		if err := upsertResult(ctx, tx, result); err != nil {
			return err
		}
		if err := replacePresentations(ctx, tx, insp.ID, pres); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func upsertInspection(ctx context.Context, tx *sql.Tx, i Inspection) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO inspections (id, started_at, ai_threshold_percent, file_directory, any_defect_above_threshold, verdict, verdict_rank)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			any_defect_above_threshold = inspections.any_defect_above_threshold OR EXCLUDED.any_defect_above_threshold,
			verdict_rank = GREATEST(inspections.verdict_rank, EXCLUDED.verdict_rank),
			verdict = CASE GREATEST(inspections.verdict_rank, EXCLUDED.verdict_rank)
				WHEN 2 THEN '節あり'
				WHEN 1 THEN 'こぶし'
				ELSE '無欠点'
			END
	`, i.ID, i.StartedAt, i.AIThresholdPercent, i.FileDirectory, i.AnyDefectAboveThreshold, i.Verdict, i.VerdictRank)
	if err != nil {
		return fmt.Errorf("store: upsert inspection: %w", err)
	}
	return nil
}

func insertDetail(ctx context.Context, tx *sql.Tx, d InspectionDetail) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO inspection_details (inspection_id, class_id, class_label, x, y, w, h, length, confidence, image_path, image_no)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (inspection_id, image_no, class_id, x, y) DO NOTHING
	`, d.InspectionID, d.ClassID, d.ClassLabel, d.X, d.Y, d.W, d.H, d.Length, d.Confidence, d.ImagePath, d.ImageNo)
	if err != nil {
		return fmt.Errorf("store: insert detail: %w", err)
	}
	return nil
}

func upsertResult(ctx context.Context, tx *sql.Tx, res InspectionResult) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO inspection_results (inspection_id, discoloration, hole, knot, dead_knot, live_knot, tight_knot, length)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (inspection_id) DO UPDATE SET
			discoloration = inspection_results.discoloration OR EXCLUDED.discoloration,
			hole = inspection_results.hole OR EXCLUDED.hole,
			knot = inspection_results.knot OR EXCLUDED.knot,
			dead_knot = inspection_results.dead_knot OR EXCLUDED.dead_knot,
			live_knot = inspection_results.live_knot OR EXCLUDED.live_knot,
			tight_knot = inspection_results.tight_knot OR EXCLUDED.tight_knot,
			length = GREATEST(inspection_results.length, EXCLUDED.length)
	`, res.InspectionID, res.Discoloration, res.Hole, res.Knot, res.DeadKnot, res.LiveKnot, res.TightKnot, res.Length)
	if err != nil {
		return fmt.Errorf("store: upsert result: %w", err)
	}
	return nil
}

// replacePresentations deletes every presentation row for inspectionID
// and bulk-inserts the new set, all inside the caller's transaction, so
// a shrinking presentation set never leaves stale rows behind.
func replacePresentations(ctx context.Context, tx *sql.Tx, inspectionID string, pres []Presentation) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM presentations WHERE inspection_id = $1`, inspectionID); err != nil {
		return fmt.Errorf("store: delete presentations: %w", err)
	}
	for _, p := range pres {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO presentations (inspection_id, group_name, image_path)
			VALUES ($1, $2, $3)
		`, p.InspectionID, p.GroupName, p.ImagePath); err != nil {
			return fmt.Errorf("store: insert presentation: %w", err)
		}
	}
	return nil
}
