package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrFavoriteExists = errors.New("favorite already exists")
var ErrFavoriteNotFound = errors.New("favorite not found")

// FavoriteType enumerates the kinds of catalog items a user can save.
const (
	FavoriteTypeTrack  = "track"
	FavoriteTypeAlbum  = "album"
	FavoriteTypeArtist = "artist"
)

// ValidFavoriteType reports whether t is one of the supported item kinds.
func ValidFavoriteType(t string) bool {
	return t == FavoriteTypeTrack || t == FavoriteTypeAlbum || t == FavoriteTypeArtist
}

type Favorite struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	SpotifyID   string
	Type        string
	Name        string
	ImageURL    sql.NullString
	ExternalURL sql.NullString
	CreatedAt   time.Time
}

type FavoriteRepository struct {
	db *DB
}

func NewFavoriteRepository(db *DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Create(ctx context.Context, fav *Favorite) error {
	query := `
		INSERT INTO user_favorites (id, user_id, spotify_id, type, name, image_url, external_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		fav.ID, fav.UserID, fav.SpotifyID, fav.Type, fav.Name, fav.ImageURL, fav.ExternalURL, fav.CreatedAt,
	)
	if err != nil {
		if uniqueViolation(err, "user_favorites_user_id_spotify_id_key") {
			return ErrFavoriteExists
		}
		return err
	}

	return nil
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Favorite, error) {
	query := `
		SELECT id, user_id, spotify_id, type, name, image_url, external_url, created_at
		FROM user_favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favorites := make([]*Favorite, 0)
	for rows.Next() {
		fav := &Favorite{}
		if err := rows.Scan(
			&fav.ID, &fav.UserID, &fav.SpotifyID, &fav.Type, &fav.Name,
			&fav.ImageURL, &fav.ExternalURL, &fav.CreatedAt,
		); err != nil {
			return nil, err
		}
		favorites = append(favorites, fav)
	}

	return favorites, rows.Err()
}

func (r *FavoriteRepository) GetByUserAndSpotifyID(ctx context.Context, userID uuid.UUID, spotifyID string) (*Favorite, error) {
	query := `
		SELECT id, user_id, spotify_id, type, name, image_url, external_url, created_at
		FROM user_favorites
		WHERE user_id = $1 AND spotify_id = $2
	`

	fav := &Favorite{}
	err := r.db.QueryRowContext(ctx, query, userID, spotifyID).Scan(
		&fav.ID, &fav.UserID, &fav.SpotifyID, &fav.Type, &fav.Name,
		&fav.ImageURL, &fav.ExternalURL, &fav.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}

	return fav, nil
}

// Delete removes the favorite identified by (userID, spotifyID). A favorite
// owned by another user is indistinguishable from a missing one.
func (r *FavoriteRepository) Delete(ctx context.Context, userID uuid.UUID, spotifyID string) error {
	query := `
		DELETE FROM user_favorites
		WHERE user_id = $1 AND spotify_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, userID, spotifyID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrFavoriteNotFound
	}

	return nil
}
