package models

import (
	"time"

	"github.com/google/uuid"
)

// JournalEntry is a stored journal text with its analysis, if any.
type JournalEntry struct {
	ID        uuid.UUID      `json:"id"`
	UserID    *uuid.UUID     `json:"user_id,omitempty"`
	Title     string         `json:"title,omitempty"`
	Text      string         `json:"text"`
	Mood      string         `json:"mood,omitempty"`
	Tags      []string       `json:"tags"`
	WordCount int            `json:"word_count"`
	IsPrivate bool           `json:"is_private"`
	AI        *Analysis      `json:"ai"`
	AISource  AnalysisSource `json:"ai_source,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateJournalRequest is the body of POST /api/journal.
type CreateJournalRequest struct {
	Text string `json:"text"`
}

// CreateEntryRequest is the body of POST /api/journal/entry.
type CreateEntryRequest struct {
	Content   string   `json:"content"`
	Title     string   `json:"title" validate:"max=200"`
	Mood      string   `json:"mood" validate:"max=64"`
	Tags      []string `json:"tags" validate:"max=20,dive,max=50"`
	IsPrivate *bool    `json:"is_private"`
}

// AIResponseRequest is the body of POST /api/journal/ai-response.
type AIResponseRequest struct {
	Content string `json:"content"`
	EntryID string `json:"entry_id"`
}

// Pagination describes a page of a larger result set.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for total items.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
