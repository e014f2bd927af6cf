package model

import "time"

// Movie represents a film available for scheduling.  Poster storage
// and upload are handled outside the engine; only the URL is kept.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title.
//  Description – optional synopsis.
//  DurationMin – running time in minutes.
//  Genre       – optional genre tag.
//  PosterURL   – optional poster image location.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Movie struct {
    ID          uint64    // movies.id
    Title       string    // movies.title
    Description *string   // movies.description (nullable)
    DurationMin uint32    // movies.duration_min
    Genre       *string   // movies.genre (nullable)
    PosterURL   *string   // movies.poster_url (nullable)
    CreatedAt   time.Time // movies.created_at
    UpdatedAt   time.Time // movies.updated_at
}
