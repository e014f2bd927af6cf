package repository

import (
    "context"
    "database/sql"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
)

// MovieRepo manages persistence for movies.  Movies are plain CRUD
// records consumed by the session registry; poster images live
// elsewhere, only their URL is stored.
type MovieRepo struct {
    db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
    return &MovieRepo{db: db}
}

// Create inserts a new movie and populates the generated ID and
// DB-default timestamps on the provided struct.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
    const q = `INSERT INTO movies (title, description, duration_min, genre, poster_url) VALUES (?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.DurationMin, m.Genre, m.PosterURL)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    m.ID = uint64(id)
    const sel = `SELECT created_at, updated_at FROM movies WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// GetByID retrieves a movie by its ID.  It returns ErrMovieNotFound
// if there is no matching row.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
    const q = `SELECT id, title, description, duration_min, genre, poster_url, created_at, updated_at
               FROM movies WHERE id = ?`
    var m model.Movie
    var desc, genre, poster sql.NullString
    err := r.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Title, &desc, &m.DurationMin, &genre, &poster, &m.CreatedAt, &m.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrMovieNotFound
    }
    if err != nil {
        return nil, err
    }
    if desc.Valid {
        d := desc.String
        m.Description = &d
    }
    if genre.Valid {
        g := genre.String
        m.Genre = &g
    }
    if poster.Valid {
        p := poster.String
        m.PosterURL = &p
    }
    return &m, nil
}

// List returns all movies ordered by title.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
    const q = `SELECT id, title, description, duration_min, genre, poster_url, created_at, updated_at
               FROM movies ORDER BY title`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    movies := make([]model.Movie, 0)
    for rows.Next() {
        var m model.Movie
        var desc, genre, poster sql.NullString
        if err := rows.Scan(&m.ID, &m.Title, &desc, &m.DurationMin, &genre, &poster, &m.CreatedAt, &m.UpdatedAt); err != nil {
            return nil, err
        }
        if desc.Valid {
            d := desc.String
            m.Description = &d
        }
        if genre.Valid {
            g := genre.String
            m.Genre = &g
        }
        if poster.Valid {
            p := poster.String
            m.PosterURL = &p
        }
        movies = append(movies, m)
    }
    return movies, rows.Err()
}

// Update overwrites the mutable fields of a movie.  It returns
// ErrMovieNotFound when no row matched the ID.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
    const q = `UPDATE movies SET title = ?, description = ?, duration_min = ?, genre = ?, poster_url = ? WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.DurationMin, m.Genre, m.PosterURL, m.ID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Either the row is missing or nothing changed; distinguish.
        var exists bool
        if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM movies WHERE id = ?)`, m.ID).Scan(&exists); err != nil {
            return err
        }
        if !exists {
            return ErrMovieNotFound
        }
    }
    return nil
}

// Delete removes a movie.  Deletion is refused with ErrConflict when
// sessions still reference the movie, so that scheduled screenings
// never dangle.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
    var inUse bool
    if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sessions WHERE movie_id = ?)`, id).Scan(&inUse); err != nil {
        return err
    }
    if inUse {
        return ErrConflict
    }
    res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrMovieNotFound
    }
    return nil
}
