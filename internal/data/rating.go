package data

import (
	"context"
	"fmt"

	"topmovies/internal/biz"

	"gorm.io/gorm"
)

// UpdateMovie writes only the non-nil fields of update.
func (r *movieRepo) UpdateMovie(ctx context.Context, id int64, update *biz.MovieUpdate) error {
	fields := map[string]interface{}{}
	if update.Rating != nil {
		fields["rating"] = *update.Rating
	}
	if update.Review != nil {
		fields["review"] = *update.Review
	}
	if update.Ranking != nil {
		fields["ranking"] = *update.Ranking
	}

	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dbMovie Movie
		if err := tx.Select("id").First(&dbMovie, id).Error; err != nil {
			return notFound(err, "movie %d", id)
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&dbMovie).Updates(fields).Error; err != nil {
			return fmt.Errorf("failed to update movie: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.invalidate(ctx, id)
	return nil
}

// SaveRankings persists the ranking of every given movie in one transaction.
func (r *movieRepo) SaveRankings(ctx context.Context, movies []*biz.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(movies))
	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range movies {
			if err := tx.Model(&Movie{}).Where("id = ?", m.ID).Update("ranking", m.Ranking).Error; err != nil {
				return fmt.Errorf("failed to save ranking for movie %d: %w", m.ID, err)
			}
			ids = append(ids, m.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.invalidate(ctx, ids...)
	return nil
}
