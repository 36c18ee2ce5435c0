package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shelfmark/internal/entity"
	"shelfmark/internal/model"
)

type nameFakeRepo struct {
	model.Repository

	books  map[uint]*entity.DbBook
	names  map[uint]*entity.DbBookName
	nextID uint
}

func newNameFakeRepo() *nameFakeRepo {
	return &nameFakeRepo{
		books:  map[uint]*entity.DbBook{},
		names:  map[uint]*entity.DbBookName{},
		nextID: 1,
	}
}

func (f *nameFakeRepo) addBook() *entity.DbBook {
	book := &entity.DbBook{ID: f.nextID, Type: entity.BookTypeManga, Synopsis: "s", CreatedAt: time.Now().UTC()}
	f.nextID++
	f.books[book.ID] = book
	return book
}

func (f *nameFakeRepo) addName(bookID uint, title string) *entity.DbBookName {
	name := &entity.DbBookName{ID: f.nextID, BookID: bookID, Name: title}
	f.nextID++
	f.names[name.ID] = name
	return name
}

func (f *nameFakeRepo) GetBookByID(ctx context.Context, id uint) (*entity.DbBook, error) {
	book, ok := f.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return book, nil
}

func (f *nameFakeRepo) GetNameByID(ctx context.Context, id uint) (*entity.DbBookName, error) {
	name, ok := f.names[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return name, nil
}

func (f *nameFakeRepo) UpdateName(ctx context.Context, id uint, updates map[string]interface{}) error {
	name, ok := f.names[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if value, ok := updates["name"]; ok {
		title := value.(string)
		for _, other := range f.names {
			if other.ID != id && other.Name == title {
				return gorm.ErrDuplicatedKey
			}
		}
		name.Name = title
	}
	if value, ok := updates["book_id"]; ok {
		name.BookID = value.(uint)
	}
	return nil
}

func nameRouter(repo *nameFakeRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &HTTPHandler{repo: repo}
	r := gin.New()
	r.PUT("/book/name/:id", h.UpdateName)
	return r
}

func TestUpdateName(t *testing.T) {
	repo := newNameFakeRepo()
	book := repo.addBook()
	name := repo.addName(book.ID, "original title")
	router := nameRouter(repo)

	resp := postJSON(t, router, http.MethodPut, "/book/name/2", map[string]any{"name": "corrected title"})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusOK)
	}
	if repo.names[name.ID].Name != "corrected title" {
		t.Fatalf("name = %q, want corrected title", repo.names[name.ID].Name)
	}
}

func TestUpdateNameMovesToAnotherBook(t *testing.T) {
	repo := newNameFakeRepo()
	first := repo.addBook()
	second := repo.addBook()
	name := repo.addName(first.ID, "title")
	router := nameRouter(repo)

	resp := postJSON(t, router, http.MethodPut, "/book/name/3", map[string]any{"bookId": second.ID})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusOK)
	}
	if repo.names[name.ID].BookID != second.ID {
		t.Fatalf("book id = %d, want %d", repo.names[name.ID].BookID, second.ID)
	}
}

func TestUpdateNameRejections(t *testing.T) {
	repo := newNameFakeRepo()
	book := repo.addBook()
	repo.addName(book.ID, "kept")
	repo.addName(book.ID, "taken")
	router := nameRouter(repo)

	cases := []struct {
		name    string
		path    string
		payload map[string]any
		want    int
	}{
		{"unknown row", "/book/name/99", map[string]any{"name": "x"}, http.StatusNotFound},
		{"blank title", "/book/name/2", map[string]any{"name": ""}, http.StatusBadRequest},
		{"unknown book", "/book/name/2", map[string]any{"bookId": 99}, http.StatusNotFound},
		{"duplicate title", "/book/name/2", map[string]any{"name": "taken"}, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, router, http.MethodPut, tc.path, tc.payload)
			if resp.Code != tc.want {
				t.Fatalf("status = %d, want %d", resp.Code, tc.want)
			}
		})
	}
}
