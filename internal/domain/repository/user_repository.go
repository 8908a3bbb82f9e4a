package repository

import (
	"context"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
)

// UserRepository puerto de cuentas para la capa de auth.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// FindByEmail devuelve (nil, nil) si no existe.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
