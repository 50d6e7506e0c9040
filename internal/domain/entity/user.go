package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleMagasinier = "magasinier"
	RoleVendeur    = "vendeur"
)

// User representa un usuario del sistema (pertenece a una empresa).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string // admin, magasinier, vendeur
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
