package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is reviewer feedback attached to a configuration. A pending
// comment blocks generation and dispatch until the PMO resolves it.
type Comment struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Author    string        `json:"author"`
	AuthorID  int           `json:"authorId"`
	Timestamp time.Time     `json:"timestamp"`
	Status    CommentStatus `json:"status"`
	Type      CommentType   `json:"type"`
}

func NewComment(text string, author string, authorID int, commentType CommentType) Comment {
	return Comment{
		ID:        uuid.NewString(),
		Text:      text,
		Author:    author,
		AuthorID:  authorID,
		Timestamp: time.Now().UTC(),
		Status:    CommentStatusPending,
		Type:      commentType,
	}
}
