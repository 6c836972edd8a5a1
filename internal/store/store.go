package store

import (
	"context"
	"database/sql"
)

var ErrNotFound = sql.ErrNoRows

// Migrate creates the evaluation tables when they do not exist yet. The
// service owns its schema; there is no separate migration tool.
func Migrate(ctx context.Context, db *sql.DB) error {
	const ddl = `
create table if not exists uploads (
  file_id           text primary key,
  original_filename text not null,
  extension         text not null default '',
  stored_path       text not null,
  created_at        timestamptz not null default now()
);

create table if not exists evaluation_results (
  id            bigserial primary key,
  created_at    timestamptz not null default now(),
  file_id       text not null unique,
  student_name  text not null default '',
  score_percent double precision not null default 0,
  reasoning     text not null default '',
  summary       text not null default '',
  votes_json    jsonb
);

create table if not exists evaluation_details (
  result_id      bigint not null references evaluation_results(id) on delete cascade,
  idx            int not null,
  question       text not null,
  student_answer text not null default '',
  correct_answer text not null default '',
  is_correct     boolean not null default false,
  partial_credit double precision,
  feedback       text not null default '',
  primary key (result_id, idx)
);`
	_, err := db.ExecContext(ctx, ddl)
	return err
}
