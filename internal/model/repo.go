package model

import (
	"context"

	"shelfmark/internal/entity"
)

// Repository defines the persistence operations backing the API.
//
// Soft-deletable rows keep their deleted_at column readable: lookups return
// the row regardless of deletion state so callers can distinguish "missing"
// from "deleted". List operations exclude soft-deleted rows unless the query
// asks otherwise.
type Repository interface {
	// Accounts
	CreateUserWithPermission(ctx context.Context, user *entity.DbUser) error
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.DbUser, error)
	GetUserByToken(ctx context.Context, token string) (*entity.DbUser, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	UpdateUser(ctx context.Context, id uint, updates map[string]interface{}) error
	SoftDeleteUser(ctx context.Context, id uint) error

	// Permissions
	CreatePermission(ctx context.Context, permission *entity.DbUserPermission) error
	GetPermissionByID(ctx context.Context, id uint) (*entity.DbUserPermission, error)
	GetPermissionByUserID(ctx context.Context, userID uint) (*entity.DbUserPermission, error)
	UpdatePermission(ctx context.Context, id uint, updates map[string]interface{}) error
	DeletePermission(ctx context.Context, id uint) error

	// Books
	CreateBook(ctx context.Context, book *entity.DbBook) error
	GetBookByID(ctx context.Context, id uint) (*entity.DbBook, error)
	ListBooks(ctx context.Context, params *entity.BookQuery) ([]entity.DbBook, *entity.Meta, error)
	UpdateBook(ctx context.Context, id uint, updates map[string]interface{}) error
	SoftDeleteBook(ctx context.Context, id uint) error

	// Chapters
	CreateChapter(ctx context.Context, chapter *entity.DbBookChapter) error
	GetChapterByID(ctx context.Context, id uint) (*entity.DbBookChapter, error)
	ListChaptersByBook(ctx context.Context, bookID uint) ([]entity.DbBookChapter, error)
	UpdateChapter(ctx context.Context, id uint, updates map[string]interface{}) error
	SoftDeleteChapter(ctx context.Context, id uint) error

	// Covers
	CreateCover(ctx context.Context, cover *entity.DbBookCover) error
	GetCoverByID(ctx context.Context, id uint) (*entity.DbBookCover, error)
	ListCoversByBook(ctx context.Context, bookID uint) ([]entity.DbBookCover, error)
	UpdateCover(ctx context.Context, id uint, updates map[string]interface{}) error
	DeleteCover(ctx context.Context, id uint) error

	// Alternative names
	CreateName(ctx context.Context, name *entity.DbBookName) error
	GetNameByID(ctx context.Context, id uint) (*entity.DbBookName, error)
	ListNamesByBook(ctx context.Context, bookID uint) ([]entity.DbBookName, error)
	UpdateName(ctx context.Context, id uint, updates map[string]interface{}) error
	DeleteName(ctx context.Context, id uint) error

	// Providers
	CreateProvider(ctx context.Context, provider *entity.DbBookProvider) error
	GetProviderByID(ctx context.Context, id uint) (*entity.DbBookProvider, error)
	ListProvidersByBook(ctx context.Context, bookID uint) ([]entity.DbBookProvider, error)
	UpdateProvider(ctx context.Context, id uint, updates map[string]interface{}) error
	DeleteProvider(ctx context.Context, id uint) error

	// Tags
	CreateTag(ctx context.Context, tag *entity.DbBookTag) error
	GetTagByID(ctx context.Context, id uint) (*entity.DbBookTag, error)
	ListTagsByBook(ctx context.Context, bookID uint) ([]entity.DbBookTag, error)
	UpdateTag(ctx context.Context, id uint, updates map[string]interface{}) error
	SoftDeleteTag(ctx context.Context, id uint) error

	// Bookmarks
	CreateBookmark(ctx context.Context, bookmark *entity.DbUserBookmark) error
	GetBookmarkByID(ctx context.Context, id uint) (*entity.DbUserBookmark, error)
	ListBookmarks(ctx context.Context, params *entity.BookmarkQuery) ([]entity.DbUserBookmark, *entity.Meta, error)
	UpdateBookmark(ctx context.Context, id uint, updates map[string]interface{}) error
	SoftDeleteBookmark(ctx context.Context, id uint) error

	// Comments
	CreateComment(ctx context.Context, comment *entity.DbUserComment) error
	GetCommentByID(ctx context.Context, id uint) (*entity.DbUserComment, error)
	ListComments(ctx context.Context, params *entity.CommentQuery) ([]entity.DbUserComment, *entity.Meta, error)
	UpdateComment(ctx context.Context, id uint, updates map[string]interface{}) error
	SoftDeleteComment(ctx context.Context, id uint) error

	// Excluded tags
	CreateExcludedTag(ctx context.Context, excluded *entity.DbUserExcludedTag) error
	GetExcludedTagByID(ctx context.Context, id uint) (*entity.DbUserExcludedTag, error)
	ListExcludedTagsByUser(ctx context.Context, userID uint) ([]entity.DbUserExcludedTag, error)
	UpdateExcludedTag(ctx context.Context, id uint, updates map[string]interface{}) error
	DeleteExcludedTag(ctx context.Context, id uint) error
}
