package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is accepted by both postgres and sqlite3. Timestamps are written by
// the application in UTC.
const schema = `
CREATE TABLE IF NOT EXISTS albums (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	event_date TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	album_id UUID REFERENCES albums(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS images (
	id UUID PRIMARY KEY,
	url TEXT NOT NULL,
	post_id UUID REFERENCES posts(id) ON DELETE SET NULL,
	album_id UUID REFERENCES albums(id) ON DELETE SET NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS videos (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	url TEXT NOT NULL,
	visible BOOLEAN NOT NULL,
	post_id UUID REFERENCES posts(id) ON DELETE SET NULL,
	album_id UUID REFERENCES albums(id) ON DELETE SET NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id UUID PRIMARY KEY,
	action TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id UUID NOT NULL,
	old_value TEXT,
	new_value TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_albums_name ON albums(name);
CREATE INDEX IF NOT EXISTS idx_posts_album_id ON posts(album_id);
CREATE INDEX IF NOT EXISTS idx_images_post_id ON images(post_id);
CREATE INDEX IF NOT EXISTS idx_images_album_id ON images(album_id);
CREATE INDEX IF NOT EXISTS idx_videos_post_id ON videos(post_id);
CREATE INDEX IF NOT EXISTS idx_videos_album_id ON videos(album_id);
CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id);
`

func InitSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
