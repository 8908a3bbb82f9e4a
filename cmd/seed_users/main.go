// seed_users da de alta usuarios demo, uno por rol operativo, contra la base
// de datos configurada. Requiere el backend postgres.
//
// Uso: go run ./cmd/seed_users
// Password de todos los usuarios demo: el valor de SEED_PASSWORD (default "demo1234").
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/auth"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/dto"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/infrastructure/postgres"
	"github.com/hnrm110901-cell/zhilian-os-sub006/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := postgres.Migrate(cfg.DB); err != nil {
		fmt.Fprintf(os.Stderr, "migraciones: %v\n", err)
		os.Exit(1)
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "demo1234"
	}

	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	seeds := []dto.RegisterRequest{
		{Email: "mesero@demo.test", Name: "Mesero Demo", Role: entity.RoleWaiter, StoreID: "store-1", BrandID: "brand-1"},
		{Email: "cajero@demo.test", Name: "Cajero Demo", Role: entity.RoleCashier, StoreID: "store-1", BrandID: "brand-1"},
		{Email: "gerente.tienda@demo.test", Name: "Gerente de Tienda Demo", Role: entity.RoleStoreManager, StoreID: "store-1", BrandID: "brand-1"},
		{Email: "gerente.marca@demo.test", Name: "Gerente de Marca Demo", Role: entity.RoleBrandManager, BrandID: "brand-1"},
		{Email: "admin@demo.test", Name: "Super Admin Demo", Role: entity.RoleSuperAdmin},
	}

	for _, s := range seeds {
		s.Password = password
		user, err := authUC.Register(ctx, s)
		if err != nil {
			// ya registrado u otro error: informar y seguir con el resto
			fmt.Fprintf(os.Stderr, "  %-32s %v\n", s.Email, err)
			continue
		}
		fmt.Printf("  %-32s rol=%s id=%s\n", user.Email, user.Role, user.ID)
	}
	fmt.Println("seed completado")
}
