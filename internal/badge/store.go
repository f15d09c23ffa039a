package badge

import (
	"context"

	"visitgate/pkg/domain"
)

type Store interface {
	Save(ctx context.Context, attachment *Attachment) error
	GetByID(ctx context.Context, id domain.AttachmentID) (*Attachment, error)
}
