package store

import (
	"context"
	"database/sql"
	"time"
)

type UploadRepo struct{ DB *sql.DB }

func NewUploadRepo(db *sql.DB) *UploadRepo { return &UploadRepo{DB: db} }

// UploadRow is the bookkeeping record for one uploaded student file.
type UploadRow struct {
	FileID           string
	OriginalFilename string
	Extension        string
	StoredPath       string
	CreatedAt        time.Time
}

func (r *UploadRepo) Save(ctx context.Context, row UploadRow) error {
	const q = `
insert into uploads (file_id, original_filename, extension, stored_path)
values ($1,$2,$3,$4)
on conflict (file_id) do update
set original_filename = excluded.original_filename,
    extension         = excluded.extension,
    stored_path       = excluded.stored_path`
	_, err := r.DB.ExecContext(ctx, q, row.FileID, row.OriginalFilename, row.Extension, row.StoredPath)
	return err
}

func (r *UploadRepo) Find(ctx context.Context, fileID string) (*UploadRow, error) {
	const q = `
select file_id, original_filename, coalesce(extension,'') as extension, stored_path, created_at
from uploads
where file_id = $1`
	var out UploadRow
	if err := r.DB.QueryRowContext(ctx, q, fileID).Scan(
		&out.FileID, &out.OriginalFilename, &out.Extension, &out.StoredPath, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// PurgeOlderThan removes upload records past their retention window.
func (r *UploadRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from uploads where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
