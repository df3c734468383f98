package domain

import "time"

type Notice struct {
	NoticeID    string       `json:"id" dynamodbav:"notice_id"`
	Title       string       `json:"title" dynamodbav:"title"`
	Content     string       `json:"content" dynamodbav:"content"`
	Link        *string      `json:"link,omitempty" dynamodbav:"link,omitempty"`
	Attachments []Attachment `json:"attachments" dynamodbav:"attachments"`
	IsActive    bool         `json:"is_active" dynamodbav:"is_active"`
	PostedBy    string       `json:"posted_by" dynamodbav:"posted_by"`
	CreatedAt   time.Time    `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time    `json:"updated" dynamodbav:"updated_at"`
}

type NoticeInput struct {
	Title   string  `json:"title" validate:"required,max=200"`
	Content string  `json:"content" validate:"required"`
	Link    *string `json:"link" validate:"omitempty,url"`
}

type UpdateNoticeRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Content *string `json:"content"`
	Link    *string `json:"link" validate:"omitempty,url"`
}
