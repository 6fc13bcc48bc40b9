package notifications

import (
	"time"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
)

type Detail struct {
	NotificationId string     `json:"notificationId"`
	Kind           string     `json:"kind"`
	Message        string     `json:"message"`
	PondId         *string    `json:"pondId,omitempty"`
	ReadingId      *string    `json:"readingId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
}

func Compose(n kdb.Notification) Detail {
	return Detail{
		NotificationId: n.NotificationId,
		Kind:           string(n.Kind),
		Message:        n.Message,
		PondId:         n.PondId,
		ReadingId:      n.ReadingId,
		CreatedAt:      n.CreatedAt,
		ReadAt:         n.ReadAt,
	}
}
