package models

import "time"

// Riddle is a single generated riddle with its rating aggregates.
type Riddle struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Question string `gorm:"type:text;not null" json:"question"` // Riddle question text.
	Answer   string `gorm:"type:text;not null" json:"answer"`   // Riddle answer text.

	// IsLatest marks the riddle currently shown on the home page. At most
	// one row carries the flag at any time; the store enforces this inside
	// a transaction on every create or update that sets it.
	IsLatest bool `gorm:"not null;default:false;index" json:"isLatest"`

	// Rating values are expected in [1,5]. The store aggregates blindly;
	// range validation is the caller's job.
	RatingCount   int      `gorm:"not null;default:0" json:"ratingCount"`                                                          // Number of ratings received.
	RatingSum     int      `gorm:"not null;default:0" json:"ratingSum"`                                                            // Cumulative rating sum.
	AverageRating *float64 `gorm:"type:real;check:chk_riddles_average_rating,average_rating BETWEEN 1 AND 5" json:"averageRating"` // Sum/count, nil until first rating.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"createdAt"` // Creation timestamp.
}

// TableName overrides the default table name.
func (Riddle) TableName() string {
	return "riddles"
}
