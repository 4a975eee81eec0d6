package domain

import (
	"sort"
	"time"
)

type Peer struct {
	UserID        UserID
	FullName      string
	Title         string
	Organization  string
	LatestMessage string
}

type ChatMessage struct {
	ID         string
	FromUserID UserID
	ToUserID   UserID
	Body       string
	CreatedAt  time.Time
}

// SortMessages orders a conversation by creation time, oldest first. Messages with equal
// timestamps keep the order the server returned them in.
func SortMessages(messages []ChatMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}

type ConciergeRole string

const (
	ConciergeUser      ConciergeRole = "user"
	ConciergeAssistant ConciergeRole = "assistant"
)

type ConciergeTurn struct {
	Role    ConciergeRole
	Content string
}
