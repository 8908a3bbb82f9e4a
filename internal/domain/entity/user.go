package entity

import "time"

// User cuenta de la plataforma. Solo existe para que la capa de auth pueda
// emitir JWTs con la identidad del actor; el core de gobernanza no la conoce.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	StoreID      string
	BrandID      string
	Status       string // active, disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
