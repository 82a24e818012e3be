package document

import "time"

// StoredDocument describes one uploaded file. Key is the only identifier:
// external APIs expose it verbatim as file_id.
type StoredDocument struct {
	Key        string    `json:"key"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
	DisplayURL string    `json:"display_url"`
}
