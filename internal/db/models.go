package db

import (
	"encoding/json"
	"time"
)

// Country maps the country reference table.
type Country struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	NameEN      string  `gorm:"column:name_en;type:text;not null;uniqueIndex"`
	CCA2        *string `gorm:"column:cca2;type:text"`
	CCA3        *string `gorm:"column:cca3;type:text"`
	Region      *string `gorm:"column:region;type:text"`
	RegionEN    *string `gorm:"column:region_en;type:text"`
	SubregionEN *string `gorm:"column:subregion_en;type:text"`
	CapitalEN   *string `gorm:"column:capital_en;type:text"`
	Deleted     bool    `gorm:"column:deleted;not null;default:false"`
}

func (Country) TableName() string { return "countries" }

// Source maps the news source reference table. Code is the natural key.
type Source struct {
	ID      int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Code    string  `gorm:"column:code;type:text;not null;uniqueIndex"`
	Name    *string `gorm:"column:name;type:text"`
	URL     *string `gorm:"column:url;type:text"`
	Icon    *string `gorm:"column:icon;type:text"`
	Deleted bool    `gorm:"column:deleted;not null;default:false"`
}

func (Source) TableName() string { return "sources" }

// Category maps the category reference table. Codes are stored uppercased.
type Category struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Code        string  `gorm:"column:code;type:text;not null;uniqueIndex"`
	Description *string `gorm:"column:description;type:text"`
	Position    *int    `gorm:"column:position;type:integer"`
	RedirectURL *string `gorm:"column:redirect_url;type:text"`
	Deleted     bool    `gorm:"column:deleted;not null;default:false"`
}

func (Category) TableName() string { return "categories" }

// NewsPost is the canonical persisted form of an ingested article.
// RemoteID is the provider-assigned id and the idempotency key for the
// whole pipeline: a post with an existing remote_id is never re-inserted.
type NewsPost struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	RemoteID    string          `gorm:"column:remote_id;type:text;not null;uniqueIndex"`
	Title       string          `gorm:"column:title;type:text;not null"`
	Description *string         `gorm:"column:description;type:text"`
	Content     string          `gorm:"column:content;type:text;not null"`
	Language    string          `gorm:"column:language;type:text;not null;default:unknown;index"`
	PublishedAt *time.Time      `gorm:"column:published_at;type:timestamptz"`
	Creator     *string         `gorm:"column:creator;type:text"`
	Link        *string         `gorm:"column:link;type:text"`
	Likes       int             `gorm:"column:likes;type:integer;not null;default:0"`
	Formatting  string          `gorm:"column:formatting;type:text;not null;default:MARKDOWN"`
	Type        string          `gorm:"column:type;type:text;not null;default:ORGANISATION_POST"`
	SubCategory *string         `gorm:"column:sub_category;type:text"`
	WorldRegion *string         `gorm:"column:world_region;type:text"`
	ImagesJSON  json.RawMessage `gorm:"column:images_json;type:jsonb"`
	CountryID   *int64          `gorm:"column:country_id;type:bigint"`
	SourceID    *int64          `gorm:"column:source_id;type:bigint"`
	CategoryID  *int64          `gorm:"column:category_id;type:bigint"`
	Deleted     bool            `gorm:"column:deleted;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`

	Images []NewsPostImage `gorm:"foreignKey:NewsPostID;constraint:OnDelete:CASCADE"`
	Videos []NewsPostVideo `gorm:"foreignKey:NewsPostID;constraint:OnDelete:CASCADE"`
}

func (NewsPost) TableName() string { return "news_posts" }

// NewsPostImage holds the original image URL and the stored variant base
// for one post image. The size-name to URL map lives in NewsPost.ImagesJSON.
type NewsPostImage struct {
	ID               string  `gorm:"column:id;type:uuid;primaryKey"`
	NewsPostID       int64   `gorm:"column:news_post_id;type:bigint;not null;index"`
	OriginalImageURL *string `gorm:"column:original_image_url;type:text"`
	StoredBaseURL    *string `gorm:"column:stored_base_url;type:text"`
}

func (NewsPostImage) TableName() string { return "news_post_images" }

// NewsPostVideo references a post's primary video.
type NewsPostVideo struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	NewsPostID int64  `gorm:"column:news_post_id;type:bigint;not null;index"`
	VideoURL   string `gorm:"column:video_url;type:text;not null"`
}

func (NewsPostVideo) TableName() string { return "news_post_videos" }

func autoMigrateModels() []any {
	return []any{
		&Country{},
		&Source{},
		&Category{},
		&NewsPost{},
		&NewsPostImage{},
		&NewsPostVideo{},
	}
}
