package testutil

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"sensor-anomaly-service/internal/core/domain"
	"sensor-anomaly-service/internal/core/ports/output"
)

// MockRunRepo is a mock of RunRepository.
type MockRunRepo struct {
	mock.Mock
}

func (m *MockRunRepo) Create(ctx context.Context, run *domain.AnalysisRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AnalysisRun), args.Error(1)
}

// MockRenderer is a mock of ChartRenderer.
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(w io.Writer, a *domain.AnnotatedDataset) error {
	args := m.Called(w, a)
	if err := args.Error(0); err != nil {
		return err
	}
	_, err := w.Write([]byte("png"))
	return err
}

// MockRecorder is a mock of AnalysisRecorder.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) ObserveAnalysis(run *domain.AnalysisRun) {
	m.Called(run)
}

func (m *MockRecorder) ObserveFailure(stage string) {
	m.Called(stage)
}

// MemoryStore is an in-memory ArtifactStore.
type MemoryStore struct {
	mu    sync.Mutex
	files map[string]storedFile
	Err   error
}

type storedFile struct {
	contentType string
	data        []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: map[string]storedFile{}}
}

func (s *MemoryStore) Put(_ context.Context, name, contentType string, data []byte) error {
	if s.Err != nil {
		return s.Err
	}
	if err := domain.ValidateArtifactName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = storedFile{contentType: contentType, data: append([]byte(nil), data...)}
	return nil
}

func (s *MemoryStore) Open(_ context.Context, name string) (io.ReadCloser, *ports.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[name]
	if !ok {
		return nil, nil, domain.ErrArtifactNotFound
	}
	return io.NopCloser(bytes.NewReader(f.data)), &ports.Artifact{
		Name:        name,
		ContentType: f.contentType,
		Size:        int64(len(f.data)),
	}, nil
}

// Bytes returns the stored content of name, or nil.
func (s *MemoryStore) Bytes(name string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[name].data
}
