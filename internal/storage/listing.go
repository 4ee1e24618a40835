package storage

import "github.com/mcoot/reflextile/internal/model"

// Matches reports whether a record belongs in a listing
func Matches(rec *model.PlayerRecord, opts model.ListOptions) bool {
	if rec.Score <= 0 && !opts.IncludeUnplayed {
		return false
	}
	if opts.Mode != "" && rec.Mode != opts.Mode {
		return false
	}
	if !opts.Since.IsZero() && rec.UpdatedAt.Before(opts.Since) {
		return false
	}
	return true
}

// Ranks reports whether a should be listed before b: higher score first,
// then the earlier record
func Ranks(a, b *model.PlayerRecord) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
