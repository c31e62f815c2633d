package queue

import "time"

// TrashMsg asks a worker to empty the trash.
type TrashMsg struct {
	Message     string    `json:"message"`
	RequestedAt time.Time `json:"requested_at"`
}

// EmbedMsg asks a worker to embed tags. Empty TagIDs means every tag that
// has no embedding yet.
type EmbedMsg struct {
	Message string   `json:"message"`
	TagIDs  []string `json:"tag_ids,omitempty"`
}
