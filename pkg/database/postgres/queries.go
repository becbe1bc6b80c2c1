package postgres

const (
	UpsertObject = `INSERT INTO objects ("path", "content_type", "cache_control", "source_url", "size", "created_date")
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT ("path") DO UPDATE SET
  content_type = EXCLUDED.content_type,
  cache_control = EXCLUDED.cache_control,
  source_url = EXCLUDED.source_url,
  size = EXCLUDED.size,
  created_date = EXCLUDED.created_date;`

	SelectObject = `SELECT content_type, cache_control, source_url, size, created_date FROM objects WHERE path = $1;`
)
