package seed

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"medimart/m/domain"
	"medimart/m/internal/ledger"
)

// EnsureDefaultUsers creates the built-in admin and supplier accounts when
// they are missing. There is no self-service registration; these two
// accounts are the whole user base.
func EnsureDefaultUsers(db *sqlx.DB) {
	defaults := []struct {
		name     string
		password string
		role     string
	}{
		{"admin", "thisisadmin", domain.RoleAdmin},
		{"supplier", "thisissupplier", domain.RoleSupplier},
	}

	for _, account := range defaults {
		var exists bool
		if err := db.Get(&exists, db.Rebind(`SELECT EXISTS(SELECT 1 FROM users WHERE name = ?)`), account.name); err != nil {
			log.Printf("unable to check for %s account: %v", account.name, err)
			continue
		}
		if exists {
			continue
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(account.password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("unable to hash %s password: %v", account.name, err)
			continue
		}
		_, err = db.Exec(db.Rebind(`INSERT INTO users (id, name, password, role, created_at) VALUES (?, ?, ?, ?, ?)`),
			uuid.NewString(), account.name, string(hashed), account.role, ledger.Now())
		if err != nil {
			log.Printf("unable to seed %s account: %v", account.name, err)
			continue
		}
		log.Printf("seeded default %s account", account.role)
	}
}
