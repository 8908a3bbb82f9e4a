package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/dto"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/repository"
	"github.com/hnrm110901-cell/zhilian-os-sub006/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase registro y login. Emite JWTs con la identidad completa del
// actor (rol, tienda, marca); el core de gobernanza la recibe ya verificada.
type AuthUseCase struct {
	users  repository.UserRepository
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{users: users, jwtCfg: jwtCfg}
}

var validRoles = map[string]bool{
	entity.RoleWaiter:       true,
	entity.RoleCashier:      true,
	entity.RoleStoreManager: true,
	entity.RoleBrandManager: true,
	entity.RoleSuperAdmin:   true,
}

// Register crea un usuario: hashea el password con bcrypt y persiste.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.NewExecutionError(domain.CodeInvalidPayload, "email y password son obligatorios")
	}
	role := in.Role
	if role == "" {
		role = entity.RoleWaiter
	}
	if !validRoles[role] {
		return nil, domain.NewExecutionError(domain.CodeInvalidPayload, "rol desconocido %q", role)
	}
	existing, err := uc.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewExecutionError(domain.CodeInvalidPayload, "el email ya está registrado")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := in.Name
	if name == "" {
		name = in.Email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		StoreID:      in.StoreID,
		BrandID:      in.BrandID,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Login verifica email/password y genera el JWT del actor.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != "active" {
		return nil, domain.NewExecutionError(domain.CodePermissionDenied, "credenciales inválidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.NewExecutionError(domain.CodePermissionDenied, "credenciales inválidas")
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, user.StoreID, user.BrandID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: toUserResponse(user)}, nil
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    u.Role,
		StoreID: u.StoreID,
		BrandID: u.BrandID,
	}
}
