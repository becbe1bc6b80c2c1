package sqlite

const (
	UpsertObject = `INSERT INTO objects ("path", "content_type", "cache_control", "source_url", "size", "created_date")
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT("path") DO UPDATE SET
  content_type = excluded.content_type,
  cache_control = excluded.cache_control,
  source_url = excluded.source_url,
  size = excluded.size,
  created_date = excluded.created_date;`

	SelectObject = `SELECT content_type, cache_control, source_url, size, created_date FROM objects WHERE path = ?;`
)
