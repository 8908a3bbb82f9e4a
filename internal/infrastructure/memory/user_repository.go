package memory

import (
	"context"
	"sync"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo cuentas en memoria (tests y desarrollo local).
type UserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*entity.User
}

// NewUserRepository construye el repositorio vacío.
func NewUserRepository() *UserRepo {
	return &UserRepo{byEmail: make(map[string]*entity.User)}
}

// Create persiste el usuario; email repetido es conflicto.
func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byEmail[user.Email]; dup {
		return domain.NewExecutionError(domain.CodeInternal, "email ya registrado: %s", user.Email)
	}
	cp := *user
	r.byEmail[user.Email] = &cp
	return nil
}

// FindByEmail devuelve (nil, nil) si no existe.
func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}
