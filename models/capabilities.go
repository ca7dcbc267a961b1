package models

// Capabilities shared by content entities. Blog satisfies all of them.

// Searchable entities are mirrored into a full-text index while visible.
type Searchable interface {
	SearchableAs() string
	SearchKey() uint
	ShouldBeSearchable() bool
	ToSearchableMap() map[string]any
}

// Taggable entities own a set of tags replaced as a whole.
type Taggable interface {
	TaggableType() string
	TaggableID() uint
}

type CountryBound interface {
	GetCountryID() uint
	CountryName() string
}

type SoftDeletable interface {
	IsTrashed() bool
}

var (
	_ Searchable    = (*Blog)(nil)
	_ Taggable      = (*Blog)(nil)
	_ CountryBound  = (*Blog)(nil)
	_ SoftDeletable = (*Blog)(nil)
)
