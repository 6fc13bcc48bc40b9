package memory

import (
	"context"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type notifications struct{ db *Database }

func cloneNotification(n kdb.Notification) kdb.Notification {
	n.PondId = clonePtr(n.PondId)
	n.ReadingId = clonePtr(n.ReadingId)
	n.ReadAt = clonePtr(n.ReadAt)
	return n
}

func (n *notifications) Create(ctx context.Context, spec kdb.NotificationSpec) (kdb.Notification, error) {
	var created kdb.Notification
	err := n.db.update(ctx, func(id tenant.Id, p *partition) error {
		created = kdb.Notification{
			NotificationId: n.db.newId(),
			TenantId:       id.String(),
			Kind:           spec.Kind,
			Message:        spec.Message,
			PondId:         clonePtr(spec.PondId),
			ReadingId:      clonePtr(spec.ReadingId),
			CreatedAt:      n.db.now(),
		}
		p.notifications = append(p.notifications, cloneNotification(created))
		return nil
	})
	return created, err
}

func (n *notifications) List(ctx context.Context, query kdb.NotificationQuery) ([]kdb.Notification, error) {
	out := []kdb.Notification{}
	err := n.db.view(ctx, func(_ tenant.Id, p *partition) error {
		for i := len(p.notifications) - 1; 0 <= i; i-- {
			x := p.notifications[i]
			if query.UnreadOnly && x.ReadAt != nil {
				continue
			}
			out = append(out, cloneNotification(x))
		}
		return nil
	})
	return out, err
}

func (n *notifications) MarkRead(ctx context.Context, notificationId string) (kdb.Notification, error) {
	var updated kdb.Notification
	err := n.db.update(ctx, func(_ tenant.Id, p *partition) error {
		i, ok := find(p.notifications, func(x kdb.Notification) bool {
			return x.NotificationId == notificationId
		})
		if !ok {
			return kdb.Missing{Table: "notification", Identity: notificationId}
		}
		if p.notifications[i].ReadAt == nil {
			now := n.db.now()
			p.notifications[i].ReadAt = &now
		}
		updated = cloneNotification(p.notifications[i])
		return nil
	})
	return updated, err
}
