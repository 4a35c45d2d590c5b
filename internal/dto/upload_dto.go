package dto

// IngestResult is what one successful ingestion batch reports back.
type IngestResult struct {
	DocumentCount int
	ChunkCount    int
}

type UploadResponse struct {
	FileCount     int      `json:"fileCount"`
	DocumentCount int      `json:"documentCount"`
	Files         []string `json:"files"` // original client-side names
}
