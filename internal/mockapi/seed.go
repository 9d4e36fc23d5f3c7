// internal/mockapi/seed.go
package mockapi

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Seed is the YAML document loaded into an empty store.
type Seed struct {
	Users       []SeedUser                          `yaml:"users"`
	Collections map[string][]map[string]interface{} `yaml:"collections"`
}

// SeedUser carries a plain password; only its bcrypt hash is stored.
type SeedUser struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
	ProfileID string `yaml:"profileId"`
}

func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	for name := range seed.Collections {
		if err := checkCollection(name); err != nil {
			return nil, fmt.Errorf("seed %s: %w", path, err)
		}
	}
	return &seed, nil
}

// SeedIfEmpty loads seed in one transaction when the store holds no records.
// It reports whether anything was written.
func (s *Store) SeedIfEmpty(ctx context.Context, seed *Seed) (bool, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count records: %w", err)
	}
	if n > 0 || seed == nil {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	for _, name := range sortedKeys(seed.Collections) {
		for _, doc := range seed.Collections[name] {
			if _, err := s.insert(ctx, tx, name, doc); err != nil {
				return false, err
			}
		}
	}

	for _, u := range seed.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return false, fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (email, password_hash, role, profile_id) VALUES (?, ?, ?, ?)
			 ON CONFLICT (email) DO UPDATE SET password_hash = excluded.password_hash, role = excluded.role, profile_id = excluded.profile_id`,
			strings.ToLower(u.Email), string(hash), u.Role, u.ProfileID); err != nil {
			return false, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}

	return true, tx.Commit()
}
