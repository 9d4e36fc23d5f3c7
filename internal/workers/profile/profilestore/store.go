// internal/workers/profile/profilestore/store.go
package profilestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"job-portal-workers/internal/common/database"
	"job-portal-workers/internal/models"

	"github.com/lib/pq"
)

var (
	ErrProfileNotFound      = errors.New("PROFILE_NOT_FOUND")
	ErrProfileSaveFailed    = errors.New("PROFILE_SAVE_FAILED")
	ErrRoleChangeNotAllowed = errors.New("ROLE_CHANGE_NOT_ALLOWED")
	ErrValidationFailed     = errors.New("VALIDATION_FAILED")
	ErrDatabase             = errors.New("DATABASE_CONNECTION_FAILED")
)

// Store reads and writes profiles split across profiles and the role tables.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type Profile struct {
	Role   models.Role
	Fields map[string]interface{}
	// RoleProfileComplete is false when the role has a table but no row exists yet.
	RoleProfileComplete bool
}

func (s *Store) Load(ctx context.Context, profileID string) (*Profile, error) {
	base, err := s.loadBase(ctx, profileID)
	if err != nil {
		return nil, err
	}

	role, ok := models.ParseRole(fmt.Sprint(base["role"]))
	if !ok {
		return nil, fmt.Errorf("%w: stored role %v", models.ErrUnknownRole, base["role"])
	}
	table, err := models.RoleTableFor(role)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return &Profile{Role: role, Fields: base, RoleProfileComplete: true}, nil
	}

	roleRow, err := s.loadRoleRow(ctx, table, profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return &Profile{Role: role, Fields: base, RoleProfileComplete: false}, nil
	}
	if err != nil {
		return nil, err
	}

	return &Profile{Role: role, Fields: models.MergeProfile(base, roleRow), RoleProfileComplete: true}, nil
}

func (s *Store) loadBase(ctx context.Context, profileID string) (map[string]interface{}, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1",
		strings.Join(models.Columns(models.BaseProfileFields), ", "), models.ProfilesTable)

	row, err := scanRow(s.db.QueryRowContext(ctx, query, profileID), models.BaseProfileFields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load profile: %v", ErrDatabase, err)
	}
	return row, nil
}

func (s *Store) loadRoleRow(ctx context.Context, table *models.RoleTable, profileID string) (map[string]interface{}, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE profile_id = $1",
		strings.Join(models.Columns(table.Fields), ", "), table.Table)

	row, err := scanRow(s.db.QueryRowContext(ctx, query, profileID), table.Fields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrDatabase, table.Table, err)
	}
	return row, nil
}

// scanRow scans one row into a map keyed by JSON name, dropping NULL columns.
func scanRow(row *sql.Row, fields []models.ProfileField) (map[string]interface{}, error) {
	dest := make([]interface{}, len(fields))
	for i, f := range fields {
		switch f.Kind {
		case models.FieldTextArray:
			dest[i] = &pq.StringArray{}
		case models.FieldInt:
			dest[i] = &sql.NullInt64{}
		case models.FieldFloat:
			dest[i] = &sql.NullFloat64{}
		default:
			dest[i] = &sql.NullString{}
		}
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	out := make(map[string]interface{}, len(fields))
	for i, f := range fields {
		switch v := dest[i].(type) {
		case *pq.StringArray:
			if *v != nil {
				out[f.Key] = []string(*v)
			}
		case *sql.NullInt64:
			if v.Valid {
				out[f.Key] = v.Int64
			}
		case *sql.NullFloat64:
			if v.Valid {
				out[f.Key] = v.Float64
			}
		case *sql.NullString:
			if v.Valid {
				out[f.Key] = v.String
			}
		}
	}
	return out, nil
}

type SaveOptions struct {
	// EnsureRoleRow creates an empty role row when no role fields are supplied.
	EnsureRoleRow bool
}

type SaveResult struct {
	ProfileID     string
	Role          models.Role
	SavedFields   []string
	IgnoredFields []string
	UpdatedAt     time.Time
}

// Save upserts the base row and the role row in one transaction.
func (s *Store) Save(ctx context.Context, flat map[string]interface{}, opts SaveOptions) (*SaveResult, error) {
	parts, err := models.SplitProfile(flat)
	if err != nil {
		return nil, err
	}

	profileID, _ := parts.Base["id"].(string)
	if strings.TrimSpace(profileID) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidationFailed)
	}

	baseCols, baseArgs, err := columnValues(models.BaseProfileFields, parts.Base)
	if err != nil {
		return nil, err
	}

	var roleCols []string
	var roleArgs []interface{}
	if parts.Table != nil {
		roleCols, roleArgs, err = columnValues(parts.Table.Fields, parts.RoleRow)
		if err != nil {
			return nil, err
		}
	}

	updatedAt := time.Now().UTC()
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var existingRole string
		err := tx.QueryRowContext(ctx, `SELECT role FROM profiles WHERE id = $1`, profileID).Scan(&existingRole)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("%w: role lookup: %v", ErrProfileSaveFailed, err)
		case existingRole != string(parts.Role):
			return fmt.Errorf("%w: profile %s is %s, cannot become %s",
				ErrRoleChangeNotAllowed, profileID, existingRole, parts.Role)
		}

		if _, err := tx.ExecContext(ctx, upsertSQL(models.ProfilesTable, "id", baseCols),
			append(baseArgs, updatedAt)...); err != nil {
			return fmt.Errorf("%w: upsert profile: %v", ErrProfileSaveFailed, err)
		}

		if parts.Table == nil || (len(roleCols) == 0 && !opts.EnsureRoleRow) {
			return nil
		}
		cols := append([]string{"profile_id"}, roleCols...)
		args := append([]interface{}{profileID}, roleArgs...)
		if _, err := tx.ExecContext(ctx, upsertSQL(parts.Table.Table, "profile_id", cols),
			append(args, updatedAt)...); err != nil {
			return fmt.Errorf("%w: upsert %s: %v", ErrProfileSaveFailed, parts.Table.Table, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	saved := make([]string, 0, len(parts.Base)+len(parts.RoleRow))
	for _, f := range models.BaseProfileFields {
		if _, ok := parts.Base[f.Key]; ok {
			saved = append(saved, f.Key)
		}
	}
	if parts.Table != nil {
		for _, f := range parts.Table.Fields {
			if _, ok := parts.RoleRow[f.Key]; ok {
				saved = append(saved, f.Key)
			}
		}
	}

	return &SaveResult{
		ProfileID:     profileID,
		Role:          parts.Role,
		SavedFields:   saved,
		IgnoredFields: parts.Unknown,
		UpdatedAt:     updatedAt,
	}, nil
}

// upsertSQL builds INSERT ... ON CONFLICT DO UPDATE with updated_at as the last parameter.
func upsertSQL(table, conflictCol string, cols []string) string {
	all := append(append([]string(nil), cols...), "updated_at")
	placeholders := make([]string, len(all))
	for i := range all {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	updates := make([]string, 0, len(all))
	for _, c := range all {
		if c == conflictCol {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table, strings.Join(all, ", "), strings.Join(placeholders, ", "), conflictCol, strings.Join(updates, ", "))
}

// columnValues converts the supplied values to driver values in field order.
func columnValues(fields []models.ProfileField, values map[string]interface{}) ([]string, []interface{}, error) {
	var cols []string
	var args []interface{}
	for _, f := range fields {
		raw, ok := values[f.Key]
		if !ok {
			continue
		}
		v, err := toColumnValue(f, raw)
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, f.Column)
		args = append(args, v)
	}
	return cols, args, nil
}

func toColumnValue(f models.ProfileField, raw interface{}) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}
	switch f.Kind {
	case models.FieldTextArray:
		switch v := raw.(type) {
		case []string:
			return pq.Array(v), nil
		case []interface{}:
			out := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s must be a list of strings", ErrValidationFailed, f.Key)
				}
				out = append(out, s)
			}
			return pq.Array(out), nil
		}
	case models.FieldInt:
		switch v := raw.(type) {
		case float64:
			if v == math.Trunc(v) {
				return int64(v), nil
			}
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		}
	case models.FieldFloat:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		}
	default:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has unexpected type %T", ErrValidationFailed, f.Key, raw)
}
