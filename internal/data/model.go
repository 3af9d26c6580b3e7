package data

// Movie represents the movie table
type Movie struct {
	ID          int64    `gorm:"primaryKey;autoIncrement"`
	Title       string   `gorm:"type:text;uniqueIndex;not null"`
	Year        int      `gorm:"not null"`
	Description string   `gorm:"not null;size:500"`
	Rating      *float64 `gorm:"index:idx_movie_rating"`
	Ranking     *int
	Review      *string `gorm:"size:500"`
	ImgURL      string  `gorm:"column:img_url;not null;size:500"`
}

// TableName overrides the table name
func (Movie) TableName() string {
	return "movie"
}
