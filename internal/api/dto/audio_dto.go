package dto

// UploadResponse is the body returned by POST /upload.
type UploadResponse struct {
	ID string `json:"id"`
}

// StatusResponse is the body returned by GET /status/:id. CorrectedAudio
// is null until the job reaches the processed state.
type StatusResponse struct {
	Status         string  `json:"status"`
	CorrectedAudio *string `json:"correctedAudio"`
}

// JobItem is one entry in the GET /status listing.
type JobItem struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
	FilePath          string  `json:"filePath"`
	CorrectedFilePath *string `json:"correctedFilePath"`
	Status            string  `json:"status"`
}

// ErrorResponse is the uniform JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
