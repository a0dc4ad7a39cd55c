package staff

import (
	"context"
	"errors"
)

var ErrStaffNotFound = errors.New("staff not found")

type StaffRepository interface {
	GetByID(ctx context.Context, id string) (Staff, error)
	ListActive(ctx context.Context) ([]Staff, error)
}
