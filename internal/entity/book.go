package entity

import "time"

// Book content types.
const (
	BookTypeManga  = "manga"
	BookTypeManhua = "manhua"
	BookTypeManhwa = "manhwa"
	BookTypeNovel  = "novel"
)

// ValidBookType reports whether the value is one of the known content types.
func ValidBookType(value string) bool {
	switch value {
	case BookTypeManga, BookTypeManhua, BookTypeManhwa, BookTypeNovel:
		return true
	default:
		return false
	}
}

// DbBook is a tracked book or comic series.
type DbBook struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	Type              string     `gorm:"column:type;type:varchar(20);index;not null" json:"type"`
	Score             *float64   `gorm:"column:score" json:"score"`
	Synopsis          string     `gorm:"column:synopsis;type:text;not null" json:"synopsis"`
	PublicationStatus string     `gorm:"column:publication_status;type:varchar(50);index;not null" json:"publication_status"`
	ChaptersAvailable int        `gorm:"column:chapters_available;not null" json:"chapters_available"`
	Hidden            bool       `gorm:"column:hidden;not null;default:false" json:"hidden"`
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`
	ModifiedAt        *time.Time `gorm:"column:modified_at;index" json:"modified_at"`
	DeletedAt         *time.Time `gorm:"column:deleted_at;index" json:"deleted_at"`
}

func (DbBook) TableName() string {
	return "book"
}

func (b *DbBook) Deleted() bool {
	return b != nil && b.DeletedAt != nil
}

// DbBookChapter is a released chapter of a book.
type DbBookChapter struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	BookID     uint       `gorm:"column:book_id;index;not null" json:"book_id"`
	Name       string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Link       string     `gorm:"column:link;type:text;not null" json:"link"`
	Number     int        `gorm:"column:number;index;not null;default:0" json:"number"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	ModifiedAt *time.Time `gorm:"column:modified_at;index" json:"modified_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at;index" json:"deleted_at"`
}

func (DbBookChapter) TableName() string {
	return "book_chapter"
}

func (c *DbBookChapter) Deleted() bool {
	return c != nil && c.DeletedAt != nil
}

// DbBookCover links a book to one of its cover images.
type DbBookCover struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	BookID uint   `gorm:"column:book_id;index;not null" json:"book_id"`
	Link   string `gorm:"column:link;type:varchar(512);uniqueIndex;not null" json:"link"`
}

func (DbBookCover) TableName() string {
	return "book_cover"
}

// DbBookName is an alternative title for a book.
type DbBookName struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	BookID uint   `gorm:"column:book_id;index;not null" json:"book_id"`
	Name   string `gorm:"column:name;type:varchar(255);uniqueIndex;not null" json:"name"`
}

func (DbBookName) TableName() string {
	return "book_name"
}

// DbBookProvider is a site the book can be read on.
type DbBookProvider struct {
	ID      uint    `gorm:"primarykey" json:"id"`
	BookID  uint    `gorm:"column:book_id;index;not null" json:"book_id"`
	Name    string  `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Link    string  `gorm:"column:link;type:text;not null" json:"link"`
	LinkAPI *string `gorm:"column:link_api;type:text" json:"link_api"`
}

func (DbBookProvider) TableName() string {
	return "book_provider"
}

// DbBookTag is a genre or descriptor attached to a book.
type DbBookTag struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	BookID     uint       `gorm:"column:book_id;index;not null" json:"book_id"`
	Name       string     `gorm:"column:name;type:varchar(100);not null" json:"name"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	ModifiedAt *time.Time `gorm:"column:modified_at;index" json:"modified_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at;index" json:"deleted_at"`
}

func (DbBookTag) TableName() string {
	return "book_tag"
}

func (t *DbBookTag) Deleted() bool {
	return t != nil && t.DeletedAt != nil
}

// BookCreateRequest carries the fields accepted when registering a book.
type BookCreateRequest struct {
	Type              string   `json:"type"`
	Score             *float64 `json:"score"`
	Synopsis          string   `json:"synopsis"`
	PublicationStatus string   `json:"publication_status"`
	ChaptersAvailable *int     `json:"chapters_available"`
	Hidden            *bool    `json:"hidden"`
}

type BookUpdateRequest struct {
	Type              *string  `json:"type,omitempty"`
	Score             *float64 `json:"score,omitempty"`
	Synopsis          *string  `json:"synopsis,omitempty"`
	PublicationStatus *string  `json:"publication_status,omitempty"`
	ChaptersAvailable *int     `json:"chapters_available,omitempty"`
	Hidden            *bool    `json:"hidden,omitempty"`
}

type BookQuery struct {
	BaseParams
	Type              string `json:"type" form:"type" query:"type"`
	PublicationStatus string `json:"publication_status" form:"publication_status" query:"publication_status"`
	IncludeHidden     bool   `json:"include_hidden" form:"include_hidden" query:"include_hidden"`
	IncludeDeleted    bool   `json:"include_deleted" form:"include_deleted" query:"include_deleted"`
}

type ChapterCreateRequest struct {
	BookID uint   `json:"bookId"`
	Name   string `json:"name"`
	Link   string `json:"link"`
	Number *int   `json:"number"`
}

type ChapterUpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	Link   *string `json:"link,omitempty"`
	Number *int    `json:"number,omitempty"`
}

// CoverCreateRequest either references an external image by link or embeds
// image bytes (base64) to be persisted through the storage backend.
type CoverCreateRequest struct {
	BookID    uint   `json:"bookId"`
	Link      string `json:"link"`
	ImageData string `json:"image_data"`
	Extension string `json:"extension"`
}

// CoverUpdateRequest moves a cover to another book or repoints its link.
type CoverUpdateRequest struct {
	BookID *uint   `json:"bookId,omitempty"`
	Link   *string `json:"link,omitempty"`
}

type NameCreateRequest struct {
	BookID uint   `json:"bookId"`
	Name   string `json:"name"`
}

type NameUpdateRequest struct {
	BookID *uint   `json:"bookId,omitempty"`
	Name   *string `json:"name,omitempty"`
}

type ProviderCreateRequest struct {
	BookID  uint    `json:"bookId"`
	Name    string  `json:"name"`
	Link    string  `json:"link"`
	LinkAPI *string `json:"link_api"`
}

type ProviderUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	Link    *string `json:"link,omitempty"`
	LinkAPI *string `json:"link_api,omitempty"`
}

type TagCreateRequest struct {
	BookID uint   `json:"bookId"`
	Name   string `json:"name"`
}

type TagUpdateRequest struct {
	Name *string `json:"name,omitempty"`
}
