package domain

import "time"

// Attachment is file metadata returned by the object store and embedded in
// notices and forms.
type Attachment struct {
	AttachmentID string    `json:"id" dynamodbav:"attachment_id"`
	Key          string    `json:"-" dynamodbav:"key"`
	Name         string    `json:"name" dynamodbav:"name"`
	Size         int64     `json:"size" dynamodbav:"size"`
	MimeType     string    `json:"mime_type" dynamodbav:"mime_type"`
	URL          string    `json:"url" dynamodbav:"url"`
	Hash         string    `json:"hash" dynamodbav:"hash"`
	UploadedBy   string    `json:"uploaded_by" dynamodbav:"uploaded_by"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
}
