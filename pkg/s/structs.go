package s

// Object is a stored image as returned by the gateway read path.
type Object struct {
	Body         []byte
	ContentType  string
	CacheControl string
}

// ObjectMeta is the metadata row kept alongside the blob.
type ObjectMeta struct {
	Path         string `json:"path"`
	ContentType  string `json:"content_type"`
	CacheControl string `json:"cache_control"`
	SourceURL    string `json:"source_url"`
	Size         int64  `json:"size"`
	CreatedDate  string `json:"created_date"` // 2021-11-02T23:02:58Z
}

// Attempt records one URL variant tried during a fetch and how it went.
// Status is 0 when the request never produced a response.
type Attempt struct {
	URL    string `json:"url"`
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}

// FetchResult is a successfully fetched and content-validated image.
type FetchResult struct {
	Body        []byte
	ContentType string
	FinalURL    string
	Extension   string
	Attempts    []Attempt
}
