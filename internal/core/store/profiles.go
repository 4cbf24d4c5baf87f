package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stellium/stellium/internal/core"
)

// CreateProfile inserts a new profile and returns it with its generated ID
// and timestamps filled in.
func (s *Store) CreateProfile(ctx context.Context, profile core.Profile) (*core.Profile, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	profile.DisplayName = strings.TrimSpace(profile.DisplayName)
	if profile.DisplayName == "" {
		return nil, errors.New("profile display name is required")
	}

	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	extraJSON, err := encodeExtraData(profile.ExtraData)
	if err != nil {
		return nil, err
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO profiles (id, display_name, birth_date, sun_sign, bio, is_persona, extra_data, avatar_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, profile.ID, profile.DisplayName, profile.BirthDate, profile.SunSign, profile.Bio,
		boolToInt(profile.IsPersona), extraJSON, profile.AvatarPath, now.Unix(), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}

	return &profile, nil
}

// UpdateProfile applies the mutable fields of a profile. Missing profiles
// return sql.ErrNoRows wrapped for the caller to classify.
func (s *Store) UpdateProfile(ctx context.Context, profile core.Profile) (*core.Profile, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	id := strings.TrimSpace(profile.ID)
	if id == "" {
		return nil, errors.New("profile id is required")
	}

	extraJSON, err := encodeExtraData(profile.ExtraData)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result, err := s.DB.ExecContext(ctx, `
		UPDATE profiles
		SET display_name = ?, birth_date = ?, sun_sign = ?, bio = ?, extra_data = ?, avatar_path = ?, updated_at = ?
		WHERE id = ?
	`, profile.DisplayName, profile.BirthDate, profile.SunSign, profile.Bio, extraJSON, profile.AvatarPath, now.Unix(), id)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("update profile %s: %w", id, sql.ErrNoRows)
	}

	return s.GetProfile(ctx, id)
}

// GetProfile returns a profile by id, or nil when absent.
func (s *Store) GetProfile(ctx context.Context, id string) (*core.Profile, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("profile id is required")
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT id, display_name, birth_date, sun_sign, bio, is_persona, extra_data, avatar_path, created_at, updated_at
		FROM profiles
		WHERE id = ?
	`, id)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return profile, nil
}

// ListCandidates returns profiles the given member has not yet swiped on,
// excluding the member themselves. Personas are included so new members
// always have someone to match with.
func (s *Store) ListCandidates(ctx context.Context, memberID string, limit int) ([]core.Profile, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, display_name, birth_date, sun_sign, bio, is_persona, extra_data, avatar_path, created_at, updated_at
		FROM profiles
		WHERE id != ?
		AND id NOT IN (SELECT target_id FROM swipes WHERE swiper_id = ?)
		ORDER BY created_at DESC
		LIMIT ?
	`, memberID, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	return collectProfiles(rows)
}

// ListPersonas returns all persona profiles ordered by display name.
func (s *Store) ListPersonas(ctx context.Context) ([]core.Profile, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, display_name, birth_date, sun_sign, bio, is_persona, extra_data, avatar_path, created_at, updated_at
		FROM profiles
		WHERE is_persona = 1
		ORDER BY display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	return collectProfiles(rows)
}

// SetAvatarPath records where a profile's processed avatar lives on disk.
func (s *Store) SetAvatarPath(ctx context.Context, id, path string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `
		UPDATE profiles SET avatar_path = ?, updated_at = ? WHERE id = ?
	`, path, time.Now().UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("set avatar path: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set avatar path: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set avatar path for %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*core.Profile, error) {
	var (
		profile    core.Profile
		birthDate  sql.NullString
		sunSign    sql.NullString
		bio        sql.NullString
		isPersona  int
		extraJSON  sql.NullString
		avatarPath sql.NullString
		createdAt  int64
		updatedAt  int64
	)

	if err := row.Scan(&profile.ID, &profile.DisplayName, &birthDate, &sunSign, &bio,
		&isPersona, &extraJSON, &avatarPath, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	profile.BirthDate = birthDate.String
	profile.SunSign = sunSign.String
	profile.Bio = bio.String
	profile.IsPersona = isPersona == 1
	profile.AvatarPath = avatarPath.String
	profile.CreatedAt = time.Unix(createdAt, 0).UTC()
	profile.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	if extraJSON.Valid && extraJSON.String != "" {
		if err := json.Unmarshal([]byte(extraJSON.String), &profile.ExtraData); err != nil {
			return nil, fmt.Errorf("decode profile extra data: %w", err)
		}
	}

	return &profile, nil
}

func collectProfiles(rows *sql.Rows) ([]core.Profile, error) {
	var profiles []core.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}
	return profiles, nil
}

func encodeExtraData(extra map[string]any) (string, error) {
	if len(extra) == 0 {
		return "", nil
	}
	payload, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("encode profile extra data: %w", err)
	}
	return string(payload), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
