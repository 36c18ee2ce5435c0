package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shelfmark/internal/entity"
	"shelfmark/internal/model"
)

type bookFakeRepo struct {
	model.Repository

	books  map[uint]*entity.DbBook
	nextID uint
}

func newBookFakeRepo() *bookFakeRepo {
	return &bookFakeRepo{books: map[uint]*entity.DbBook{}, nextID: 1}
}

func (f *bookFakeRepo) CreateBook(ctx context.Context, book *entity.DbBook) error {
	book.ID = f.nextID
	book.CreatedAt = time.Now().UTC()
	f.nextID++
	f.books[book.ID] = book
	return nil
}

func (f *bookFakeRepo) GetBookByID(ctx context.Context, id uint) (*entity.DbBook, error) {
	book, ok := f.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return book, nil
}

func (f *bookFakeRepo) UpdateBook(ctx context.Context, id uint, updates map[string]interface{}) error {
	book, ok := f.books[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if value, ok := updates["synopsis"]; ok {
		book.Synopsis = value.(string)
	}
	if value, ok := updates["type"]; ok {
		book.Type = value.(string)
	}
	if value, ok := updates["modified_at"]; ok {
		at := value.(time.Time)
		book.ModifiedAt = &at
	}
	return nil
}

func (f *bookFakeRepo) SoftDeleteBook(ctx context.Context, id uint) error {
	book, ok := f.books[id]
	if !ok || book.Deleted() {
		return gorm.ErrRecordNotFound
	}
	now := time.Now().UTC()
	book.DeletedAt = &now
	return nil
}

func bookRouter(repo *bookFakeRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &HTTPHandler{repo: repo}
	r := gin.New()
	r.POST("/book", h.CreateBook)
	r.GET("/book/:id", h.GetBook)
	r.PUT("/book/:id", h.UpdateBook)
	r.DELETE("/book/:id", h.DeleteBook)
	return r
}

func postJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("unexpected error marshalling payload: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCreateBookValidation(t *testing.T) {
	router := bookRouter(newBookFakeRepo())

	chapters := 12
	tests := []struct {
		name           string
		payload        entity.BookCreateRequest
		expectedStatus int
	}{
		{
			name:           "Valid",
			payload:        entity.BookCreateRequest{Type: "manga", Synopsis: "a story", PublicationStatus: "ongoing", ChaptersAvailable: &chapters},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "UnknownType",
			payload:        entity.BookCreateRequest{Type: "poetry", Synopsis: "a story", PublicationStatus: "ongoing", ChaptersAvailable: &chapters},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "MissingSynopsis",
			payload:        entity.BookCreateRequest{Type: "manga", PublicationStatus: "ongoing", ChaptersAvailable: &chapters},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "MissingChapters",
			payload:        entity.BookCreateRequest{Type: "manga", Synopsis: "a story", PublicationStatus: "ongoing"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, http.MethodPost, "/book", tt.payload)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (body %s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetBookReturnsDeletedRow(t *testing.T) {
	repo := newBookFakeRepo()
	now := time.Now().UTC()
	repo.books[1] = &entity.DbBook{ID: 1, Type: "manga", Synopsis: "gone", PublicationStatus: "ended", DeletedAt: &now}
	repo.nextID = 2
	router := bookRouter(repo)

	// Reads expose deletion state instead of hiding the row.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/book/1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body struct {
		Value entity.DbBook `json:"value"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unexpected error decoding body: %v", err)
	}
	if body.Value.DeletedAt == nil {
		t.Fatal("expected the deletion timestamp in the payload")
	}
}

func TestUpdateBookRejectsDeletedTarget(t *testing.T) {
	repo := newBookFakeRepo()
	now := time.Now().UTC()
	repo.books[1] = &entity.DbBook{ID: 1, Type: "manga", Synopsis: "gone", PublicationStatus: "ended", DeletedAt: &now}
	repo.nextID = 2
	router := bookRouter(repo)

	synopsis := "new synopsis"
	w := postJSON(t, router, http.MethodPut, "/book/1", entity.BookUpdateRequest{Synopsis: &synopsis})

	if w.Code != http.StatusGone {
		t.Fatalf("expected status 410, got %d (body %s)", w.Code, w.Body.String())
	}
}

func TestDeleteBookLifecycle(t *testing.T) {
	repo := newBookFakeRepo()
	repo.books[1] = &entity.DbBook{ID: 1, Type: "manga", Synopsis: "a story", PublicationStatus: "ongoing"}
	repo.nextID = 2
	router := bookRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/book/1", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 on first delete, got %d", w.Code)
	}
	if !repo.books[1].Deleted() {
		t.Fatal("expected the row to be soft-deleted")
	}

	// A second delete reports the already-deleted state.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/book/1", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusGone {
		t.Fatalf("expected status 410 on repeat delete, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/book/99", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown id, got %d", w.Code)
	}
}
