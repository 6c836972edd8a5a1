package store

import (
	"context"
	"database/sql"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/eval/types"
)

type DetailRepo struct{ DB *sql.DB }

func NewDetailRepo(db *sql.DB) *DetailRepo { return &DetailRepo{DB: db} }

// ReplaceForResult swaps in the full detail set for a result atomically.
func (r *DetailRepo) ReplaceForResult(ctx context.Context, resultID int64, details []types.EvalDetail) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `delete from evaluation_details where result_id = $1`, resultID); err != nil {
		return err
	}

	const q = `
insert into evaluation_details (result_id, idx, question, student_answer, correct_answer, is_correct, partial_credit, feedback)
values ($1,$2,$3,$4,$5,$6,$7,$8)`
	for i, d := range details {
		if _, err := tx.ExecContext(ctx, q,
			resultID, i, d.Question, d.StudentAnswer, d.CorrectAnswer, d.IsCorrect, d.PartialCredit, d.Feedback); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *DetailRepo) ListForResult(ctx context.Context, resultID int64) ([]types.EvalDetail, error) {
	const q = `
select question,
       coalesce(student_answer,'') as student_answer,
       coalesce(correct_answer,'') as correct_answer,
       is_correct, partial_credit,
       coalesce(feedback,'') as feedback
from evaluation_details
where result_id = $1
order by idx`
	rows, err := r.DB.QueryContext(ctx, q, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.EvalDetail
	for rows.Next() {
		var (
			d  types.EvalDetail
			pc sql.NullFloat64
		)
		if err := rows.Scan(&d.Question, &d.StudentAnswer, &d.CorrectAnswer, &d.IsCorrect, &pc, &d.Feedback); err != nil {
			return nil, err
		}
		if pc.Valid {
			v := pc.Float64
			d.PartialCredit = &v
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
