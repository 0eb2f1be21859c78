// Package gorm provides GORM models and repositories for video records and
// the analysis cache
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/analysis"
)

// VideoModel is the video record. Analysis fields are stored flat next to
// the status so clients can read the record as-is.
type VideoModel struct {
	ID          string `gorm:"type:varchar(64);primaryKey"`
	StoragePath string `gorm:"type:varchar(1024)"`
	VideoURL    string `gorm:"type:text"`
	Status      string `gorm:"type:varchar(20);not null;index:idx_videos_status_updated"`
	Error       string `gorm:"type:text"`

	HasAnalysis  bool
	Title        string                                `gorm:"type:varchar(255)"`
	Description  string                                `gorm:"type:text"`
	Cuisine      string                                `gorm:"type:varchar(100)"`
	Difficulty   string                                `gorm:"type:varchar(20)"`
	CookingTime  int                                   `gorm:"default:0"`
	Ingredients  JSONColumn[[]analysis.Ingredient]      `gorm:"type:json"`
	Instructions JSONColumn[[]analysis.InstructionStep] `gorm:"type:json"`
	Nutrition    JSONColumn[analysis.Nutrition]         `gorm:"type:json"`
	Tags         StringSlice                           `gorm:"type:json"`
	AIMetadata   JSONColumn[analysis.AIMetadata]        `gorm:"type:json"`

	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false;index:idx_videos_status_updated"`
}

// TableName overrides the default table name
func (VideoModel) TableName() string {
	return "videos"
}

// AnalysisCacheModel is one cached analysis, kept apart from the video table
type AnalysisCacheModel struct {
	VideoID   string                               `gorm:"type:varchar(64);primaryKey"`
	Analysis  JSONColumn[analysis.RecipeAnalysis] `gorm:"type:json;not null"`
	CreatedAt time.Time
}

// TableName overrides the default table name
func (AnalysisCacheModel) TableName() string {
	return "analysis_cache"
}

// AllModels lists every model for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{&VideoModel{}, &AnalysisCacheModel{}}
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// JSONColumn stores any JSON-serializable value in a single column
type JSONColumn[T any] struct {
	Data T
}

// NewJSONColumn wraps v
func NewJSONColumn[T any](v T) JSONColumn[T] {
	return JSONColumn[T]{Data: v}
}

// Scan implements the sql.Scanner interface
func (j *JSONColumn[T]) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, &j.Data)
	case string:
		return json.Unmarshal([]byte(v), &j.Data)
	default:
		return fmt.Errorf("cannot scan %T into JSONColumn", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONColumn[T]) Value() (driver.Value, error) {
	data, err := json.Marshal(j.Data)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
