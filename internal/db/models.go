package db

import (
	"time"

	"kalaghar.in/lokakala/internal/language"
)

// Artwork maps the artworks cache table. One row per distinct English text;
// translation columns start NULL and are filled in as languages are requested.
type Artwork struct {
	ID       int64   `gorm:"column:id;primaryKey;autoIncrement"`
	English  string  `gorm:"column:english;type:text;not null;uniqueIndex:idx_artworks_english"`
	ArtName  string  `gorm:"column:art_name;type:text;not null;default:''"`
	ArtStyle string  `gorm:"column:art_style;type:text;not null;default:''"`
	Region   string  `gorm:"column:region;type:text;not null;default:''"`
	Question *string `gorm:"column:question;type:text"`

	Hindi   *string `gorm:"column:hindi;type:text"`
	Marathi *string `gorm:"column:marathi;type:text"`
	Bengali *string `gorm:"column:bengali;type:text"`
	Tamil   *string `gorm:"column:tamil;type:text"`
	Telugu  *string `gorm:"column:telugu;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (Artwork) TableName() string { return "artworks" }

// Translation returns the stored translation for one language, or nil when
// it has not been populated yet.
func (a *Artwork) Translation(code language.Code) *string {
	if a == nil {
		return nil
	}
	switch code {
	case language.Hindi:
		return a.Hindi
	case language.Marathi:
		return a.Marathi
	case language.Bengali:
		return a.Bengali
	case language.Tamil:
		return a.Tamil
	case language.Telugu:
		return a.Telugu
	default:
		return nil
	}
}

// SetTranslation populates one language column. Used only when building a
// fresh row; cached rows are updated through ArtworkStore.UpdateTranslations.
func (a *Artwork) SetTranslation(code language.Code, text string) {
	if a == nil {
		return
	}
	value := text
	switch code {
	case language.Hindi:
		a.Hindi = &value
	case language.Marathi:
		a.Marathi = &value
	case language.Bengali:
		a.Bengali = &value
	case language.Tamil:
		a.Tamil = &value
	case language.Telugu:
		a.Telugu = &value
	}
}

// TranslationColumn maps a language code to its table column.
func TranslationColumn(code language.Code) string {
	switch code {
	case language.Hindi:
		return "hindi"
	case language.Marathi:
		return "marathi"
	case language.Bengali:
		return "bengali"
	case language.Tamil:
		return "tamil"
	case language.Telugu:
		return "telugu"
	default:
		return ""
	}
}

func autoMigrateModels() []any {
	return []any{
		&Artwork{},
	}
}
