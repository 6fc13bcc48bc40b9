package db

import (
	"context"
	"time"
)

type NotificationKind string

const (
	NotificationWaterQuality NotificationKind = "water-quality"
)

type Notification struct {
	NotificationId string
	TenantId       string
	Kind           NotificationKind
	Message        string
	PondId         *string
	ReadingId      *string
	CreatedAt      time.Time
	ReadAt         *time.Time
}

type NotificationSpec struct {
	Kind      NotificationKind
	Message   string
	PondId    *string
	ReadingId *string
}

type NotificationQuery struct {
	UnreadOnly bool
}

type NotificationInterface interface {
	Create(ctx context.Context, spec NotificationSpec) (Notification, error)

	// List returns notifications, the latest first.
	List(ctx context.Context, query NotificationQuery) ([]Notification, error)

	// MarkRead marks a notification read. Marking twice keeps the first ReadAt.
	MarkRead(ctx context.Context, notificationId string) (Notification, error)
}
