package port

import (
	"context"

	"alertaUtec/internal/modules/notifications/domain"
)

// Mailer delivers one e-mail.
type Mailer interface {
	Send(ctx context.Context, email domain.Email) error
}

// TopicHandler processes messages of one topic.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, msg *domain.Message) error
}
