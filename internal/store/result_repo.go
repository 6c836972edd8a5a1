package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type ResultRepo struct{ DB *sql.DB }

func NewResultRepo(db *sql.DB) *ResultRepo { return &ResultRepo{DB: db} }

// ResultRow is one stored evaluation result.
type ResultRow struct {
	ID           int64
	CreatedAt    time.Time
	FileID       string
	StudentName  string
	ScorePercent float64
	Reasoning    string
	Summary      string
	Votes        []float64
}

// Upsert writes the evaluation result for a file, replacing any previous run.
// Returns the row id so detail rows can be attached.
func (r *ResultRepo) Upsert(ctx context.Context, row ResultRow) (int64, error) {
	js, _ := json.Marshal(row.Votes)
	const q = `
insert into evaluation_results (file_id, student_name, score_percent, reasoning, summary, votes_json)
values ($1,$2,$3,$4,$5,$6)
on conflict (file_id) do update
set student_name  = excluded.student_name,
    score_percent = excluded.score_percent,
    reasoning     = excluded.reasoning,
    summary       = excluded.summary,
    votes_json    = excluded.votes_json,
    created_at    = now()
returning id`
	var id int64
	err := r.DB.QueryRowContext(ctx, q,
		row.FileID, row.StudentName, row.ScorePercent, row.Reasoning, row.Summary, js,
	).Scan(&id)
	return id, err
}

func (r *ResultRepo) FindByID(ctx context.Context, id int64) (*ResultRow, error) {
	const q = `
select id, created_at, file_id,
       coalesce(student_name,'') as student_name,
       coalesce(score_percent,0) as score_percent,
       coalesce(reasoning,'') as reasoning,
       coalesce(summary,'') as summary,
       votes_json
from evaluation_results
where id = $1`
	return r.scanRow(r.DB.QueryRowContext(ctx, q, id))
}

// FindByFileID returns the latest result for an uploaded file. If maxAge > 0
// and the record is older, ErrNotFound is returned so the caller re-evaluates.
func (r *ResultRepo) FindByFileID(ctx context.Context, fileID string, maxAge time.Duration) (*ResultRow, error) {
	const q = `
select id, created_at, file_id,
       coalesce(student_name,'') as student_name,
       coalesce(score_percent,0) as score_percent,
       coalesce(reasoning,'') as reasoning,
       coalesce(summary,'') as summary,
       votes_json
from evaluation_results
where file_id = $1
order by created_at desc
limit 1`
	row, err := r.scanRow(r.DB.QueryRowContext(ctx, q, fileID))
	if err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Since(row.CreatedAt) > maxAge {
		return nil, ErrNotFound
	}
	return row, nil
}

func (r *ResultRepo) scanRow(row *sql.Row) (*ResultRow, error) {
	var (
		out ResultRow
		js  []byte
	)
	if err := row.Scan(&out.ID, &out.CreatedAt, &out.FileID,
		&out.StudentName, &out.ScorePercent, &out.Reasoning, &out.Summary, &js); err != nil {
		return nil, err
	}
	out.Votes = decodeVotes(js)
	return &out, nil
}

// decodeVotes tolerates broken votes JSON; the scores themselves are intact.
func decodeVotes(js []byte) []float64 {
	if len(js) == 0 {
		return nil
	}
	var votes []float64
	_ = json.Unmarshal(js, &votes)
	return votes
}

// PurgeOlderThan drops stale results so the table does not grow unbounded.
func (r *ResultRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from evaluation_results where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
