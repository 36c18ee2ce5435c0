package entity

import "time"

// Bookmark reading statuses.
const (
	BookmarkStatusReading    = "reading"
	BookmarkStatusPlanToRead = "plan_to_read"
	BookmarkStatusOnHold     = "on_hold"
	BookmarkStatusDropped    = "dropped"
	BookmarkStatusCompleted  = "completed"
)

// ValidBookmarkStatus reports whether the value is a known reading status.
func ValidBookmarkStatus(value string) bool {
	switch value {
	case BookmarkStatusReading, BookmarkStatusPlanToRead, BookmarkStatusOnHold,
		BookmarkStatusDropped, BookmarkStatusCompleted:
		return true
	default:
		return false
	}
}

// DbUserBookmark tracks a user's reading progress on one book.
// Each user holds at most one bookmark per book.
type DbUserBookmark struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	UserID     uint       `gorm:"column:user_id;index;not null;uniqueIndex:idx_bookmark_user_book" json:"user_id"`
	BookID     uint       `gorm:"column:book_id;index;not null;uniqueIndex:idx_bookmark_user_book" json:"book_id"`
	ChapterID  *uint      `gorm:"column:chapter_id;index" json:"chapter_id"`
	Status     string     `gorm:"column:status;type:varchar(20);index;not null;default:reading" json:"status"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	ModifiedAt *time.Time `gorm:"column:modified_at;index" json:"modified_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at;index" json:"deleted_at"`
	LastReadAt *time.Time `gorm:"column:last_read_at;index" json:"last_read_at"`
}

func (DbUserBookmark) TableName() string {
	return "user_bookmark"
}

func (b *DbUserBookmark) Deleted() bool {
	return b != nil && b.DeletedAt != nil
}

// DbUserComment is a user comment on a book page.
type DbUserComment struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	UserID      uint       `gorm:"column:user_id;index;not null" json:"user_id"`
	BookID      uint       `gorm:"column:book_id;index;not null" json:"book_id"`
	Message     string     `gorm:"column:message;type:text;not null" json:"message"`
	Like        int        `gorm:"column:like;not null;default:0" json:"like"`
	Highlighted bool       `gorm:"column:highlighted;index;not null;default:false" json:"highlighted"`
	Hidden      bool       `gorm:"column:hidden;index;not null;default:false" json:"hidden"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	ModifiedAt  *time.Time `gorm:"column:modified_at;index" json:"modified_at"`
	DeletedAt   *time.Time `gorm:"column:deleted_at;index" json:"deleted_at"`
}

func (DbUserComment) TableName() string {
	return "user_comment"
}

func (c *DbUserComment) Deleted() bool {
	return c != nil && c.DeletedAt != nil
}

// DbUserExcludedTag hides books carrying the tag from the user's browsing.
type DbUserExcludedTag struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `gorm:"column:user_id;index;not null" json:"user_id"`
	TagID  uint `gorm:"column:tag_id;index;not null" json:"tag_id"`
}

func (DbUserExcludedTag) TableName() string {
	return "user_excluded_tag"
}

type BookmarkCreateRequest struct {
	UserID    uint   `json:"userId"`
	BookID    uint   `json:"bookId"`
	ChapterID *uint  `json:"chapterId"`
	Status    string `json:"status"`
}

type BookmarkUpdateRequest struct {
	ChapterID *uint   `json:"chapterId,omitempty"`
	Status    *string `json:"status,omitempty"`
}

type BookmarkQuery struct {
	BaseParams
	UserID uint   `json:"userId" form:"userId" query:"userId"`
	BookID uint   `json:"bookId" form:"bookId" query:"bookId"`
	Status string `json:"status" form:"status" query:"status"`
}

type CommentCreateRequest struct {
	UserID  uint   `json:"userId"`
	BookID  uint   `json:"bookId"`
	Message string `json:"message"`
}

type CommentUpdateRequest struct {
	Message     *string `json:"message,omitempty"`
	Like        *int    `json:"like,omitempty"`
	Highlighted *bool   `json:"highlighted,omitempty"`
	Hidden      *bool   `json:"hidden,omitempty"`
}

type CommentQuery struct {
	BaseParams
	UserID uint `json:"userId" form:"userId" query:"userId"`
	BookID uint `json:"bookId" form:"bookId" query:"bookId"`
}

type ExcludedTagCreateRequest struct {
	UserID uint `json:"userId"`
	TagID  uint `json:"tagId"`
}

// ExcludedTagUpdateRequest repoints an exclusion at another user or tag.
type ExcludedTagUpdateRequest struct {
	UserID *uint `json:"userId,omitempty"`
	TagID  *uint `json:"tagId,omitempty"`
}
