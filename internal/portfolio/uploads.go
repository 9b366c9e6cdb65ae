package portfolio

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"artfolio_backend/internal/models"
	"artfolio_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// DefaultDescription - описание новой работы до редактирования.
const DefaultDescription = "Click to add a description for your project."

// PendingUpload - файл, выбранный пользователем, но ещё не загруженный.
// Существует только в памяти сессии и не видна в хранилище.
type PendingUpload struct {
	TempID      string    `json:"temp_id"`
	FileName    string    `json:"file_name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	StagedAt    time.Time `json:"staged_at"`

	Data []byte `json:"-"`

	seq uint64
}

// UploadCommitter превращает черновик в запись хранилища.
type UploadCommitter interface {
	CommitUpload(ctx context.Context, upload PendingUpload) (*models.Artwork, error)
}

// PendingUploads - черновики загрузок одной сессии.
type PendingUploads struct {
	maxPending int
	ttl        time.Duration
	now        func() time.Time

	mu      sync.Mutex
	seq     uint64
	pending map[string]PendingUpload
}

func NewPendingUploads(maxPending int, ttl time.Duration) *PendingUploads {
	return &PendingUploads{
		maxPending: maxPending,
		ttl:        ttl,
		now:        time.Now,
		pending:    make(map[string]PendingUpload),
	}
}

// TitleFromFileName - имя файла без расширения.
func TitleFromFileName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Stage сохраняет черновик. Заголовок берётся из имени файла.
func (u *PendingUploads) Stage(fileName, contentType string, data []byte) (PendingUpload, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.maxPending > 0 && len(u.pending) >= u.maxPending {
		return PendingUpload{}, apperrors.ErrPendingLimitExceeded
	}

	u.seq++
	p := PendingUpload{
		TempID:      uuid.NewString(),
		FileName:    fileName,
		Title:       TitleFromFileName(fileName),
		Description: DefaultDescription,
		ContentType: contentType,
		Size:        len(data),
		StagedAt:    u.now(),
		Data:        data,
		seq:         u.seq,
	}
	u.pending[p.TempID] = p
	return p, nil
}

// List возвращает черновики в порядке добавления (без содержимого файлов).
func (u *PendingUploads) List() []PendingUpload {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]PendingUpload, 0, len(u.pending))
	for _, p := range u.pending {
		p.Data = nil
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].seq < out[j].seq
	})
	return out
}

func (u *PendingUploads) Discard(tempID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.pending[tempID]; !ok {
		return apperrors.ErrPendingUploadNotFound
	}
	delete(u.pending, tempID)
	return nil
}

// Commit загружает черновик через committer. При ошибке черновик остаётся.
func (u *PendingUploads) Commit(ctx context.Context, tempID string, committer UploadCommitter) (*models.Artwork, error) {
	u.mu.Lock()
	p, ok := u.pending[tempID]
	if ok {
		delete(u.pending, tempID)
	}
	u.mu.Unlock()

	if !ok {
		return nil, apperrors.ErrPendingUploadNotFound
	}

	artwork, err := committer.CommitUpload(ctx, p)
	if err != nil {
		u.mu.Lock()
		u.pending[tempID] = p
		u.mu.Unlock()
		return nil, err
	}
	return artwork, nil
}

// Sweep удаляет черновики старше ttl и возвращает их количество.
func (u *PendingUploads) Sweep(now time.Time) int {
	if u.ttl <= 0 {
		return 0
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	removed := 0
	for id, p := range u.pending {
		if now.Sub(p.StagedAt) > u.ttl {
			delete(u.pending, id)
			removed++
		}
	}
	return removed
}

func (u *PendingUploads) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending)
}

// Clear отбрасывает все черновики.
func (u *PendingUploads) Clear() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending = make(map[string]PendingUpload)
}
