package model

import (
	"errors"
	"time"
)

// ErrUnknownCategory is returned by ParseNoticeCategory.
var ErrUnknownCategory = errors.New("unknown notice category")

// NoticeCategory classifies an announcement.
type NoticeCategory string

const (
	CategoryApplication NoticeCategory = "application"
	CategoryResult      NoticeCategory = "result"
	CategoryGeneral     NoticeCategory = "general"
)

// ParseNoticeCategory accepts the three known categories. An empty string is
// returned as-is and means "all categories".
func ParseNoticeCategory(s string) (NoticeCategory, error) {
	switch c := NoticeCategory(s); c {
	case "", CategoryApplication, CategoryResult, CategoryGeneral:
		return c, nil
	}
	return "", ErrUnknownCategory
}

// Notice is an official announcement.
type Notice struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content,omitempty"`
	SourceURL   string         `json:"source_url,omitempty"`
	Category    NoticeCategory `json:"category"`
	Pinned      bool           `json:"is_pinned"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
}
