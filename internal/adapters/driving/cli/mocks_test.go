package cli

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
)

var errMock = errors.New("mock error")

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// mockDocumentService serves a single converted PDF, doc-1.
type mockDocumentService struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func testDocument() *domain.Document {
	return &domain.Document{
		ID:         "doc-1",
		Filename:   "report.pdf",
		MIMEType:   "application/pdf",
		Content:    []byte("%PDF-1.4"),
		Layout:     domain.LayoutViewer,
		CreatedAt:  testTime,
		ModifiedAt: testTime,
	}
}

func (m *mockDocumentService) Upload(_ context.Context, filename, mimeType string, content []byte) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded = append(m.uploaded, filename)
	return &domain.Document{ID: "doc-2", Filename: filename, MIMEType: mimeType, Content: content}, nil
}

func (m *mockDocumentService) Update(_ context.Context, id string, content []byte) (*domain.Document, error) {
	doc := testDocument()
	doc.ID = id
	doc.Content = content
	return doc, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if id != "doc-1" {
		return nil, domain.ErrNotFound
	}
	return testDocument(), nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return []domain.Document{*testDocument()}, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDocumentService) Status(_ context.Context, id string) (*driving.DocumentStatus, error) {
	if id != "doc-1" {
		return nil, domain.ErrNotFound
	}
	settings, _ := domain.Resolve(domain.DefaultGlobalSettings(), domain.LocalOverride{})
	return &driving.DocumentStatus{
		Document: *testDocument(),
		State:    domain.StateConverted,
		Status: &domain.ConversionStatus{
			Fingerprint:           "abc123",
			SuccessfullyConverted: true,
			NumPages:              2,
			ConvertedAt:           testTime,
		},
		Settings: settings,
		Indexed:  true,
		Storage:  domain.ArtifactLocation{Type: domain.StorageBlob},
	}, nil
}

func (m *mockDocumentService) Pages(_ context.Context, _ string, kind domain.ArtifactKind) ([]string, error) {
	return []string{
		domain.ArtifactName(kind, 1, domain.ImageFormatPNG),
		domain.ArtifactName(kind, 2, domain.ImageFormatPNG),
	}, nil
}

func (m *mockDocumentService) Page(_ context.Context, _ string, _ domain.ArtifactKind, page int) ([]byte, error) {
	if page > 2 {
		return nil, domain.ErrNotFound
	}
	if page == 1 {
		return []byte("first page text"), nil
	}
	return []byte("second page text"), nil
}

func (m *mockDocumentService) Text(_ context.Context, _ string) ([]string, error) {
	return []string{"first page text", "second page text"}, nil
}

func (m *mockDocumentService) Search(_ context.Context, _, _ string, limit int) ([]domain.PageHit, error) {
	hits := []domain.PageHit{{Page: 2, Score: 1.25}, {Page: 1, Score: 0.5}}
	if limit > 0 && limit < len(hits) {
		hits = hits[:limit]
	}
	return hits, nil
}

// mockDocumentServiceError fails every call.
type mockDocumentServiceError struct{}

func (m *mockDocumentServiceError) Upload(_ context.Context, _, _ string, _ []byte) (*domain.Document, error) {
	return nil, errMock
}

func (m *mockDocumentServiceError) Update(_ context.Context, _ string, _ []byte) (*domain.Document, error) {
	return nil, errMock
}

func (m *mockDocumentServiceError) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, errMock
}

func (m *mockDocumentServiceError) List(_ context.Context) ([]domain.Document, error) {
	return nil, errMock
}

func (m *mockDocumentServiceError) Delete(_ context.Context, _ string) error {
	return errMock
}

func (m *mockDocumentServiceError) Status(_ context.Context, _ string) (*driving.DocumentStatus, error) {
	return nil, errMock
}

func (m *mockDocumentServiceError) Pages(_ context.Context, _ string, _ domain.ArtifactKind) ([]string, error) {
	return nil, errMock
}

func (m *mockDocumentServiceError) Page(_ context.Context, _ string, _ domain.ArtifactKind, _ int) ([]byte, error) {
	return nil, errMock
}

func (m *mockDocumentServiceError) Text(_ context.Context, _ string) ([]string, error) {
	return nil, errMock
}

func (m *mockDocumentServiceError) Search(_ context.Context, _, _ string, _ int) ([]domain.PageHit, error) {
	return nil, errMock
}

// mockConverterService records Convert calls and returns a fixed status.
type mockConverterService struct {
	status *domain.ConversionStatus
	err    error

	converted []string
	force     bool
}

func (m *mockConverterService) CanConvert(_ context.Context, _ *domain.Document) (bool, error) {
	return true, nil
}

func (m *mockConverterService) Convert(_ context.Context, id string, _ domain.GlobalSettings, opts driving.ConvertOptions) (*domain.ConversionStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.converted = append(m.converted, id)
	m.force = opts.Force
	if m.status != nil {
		return m.status, nil
	}
	return &domain.ConversionStatus{Fingerprint: "abc123", SuccessfullyConverted: true, NumPages: 3, ConvertedAt: testTime}, nil
}

func (m *mockConverterService) State(_ context.Context, _ string) (domain.ConversionState, error) {
	return domain.StateConverted, nil
}

func (m *mockConverterService) Metadata(_ context.Context, _ string) (*domain.Metadata, error) {
	return nil, nil
}

func (m *mockConverterService) Delete(_ context.Context, _ string) error {
	return nil
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	global domain.GlobalSettings
	values map[string]string
	local  map[string]*bool
	err    error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		global: domain.DefaultGlobalSettings(),
		values: make(map[string]string),
		local:  make(map[string]*bool),
	}
}

func (m *mockSettingsService) Global() domain.GlobalSettings {
	return m.global.Clone()
}

func (m *mockSettingsService) GetDefaults() domain.GlobalSettings {
	return domain.DefaultGlobalSettings()
}

func (m *mockSettingsService) Save(settings *domain.GlobalSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	m.global = settings.Clone()
	return nil
}

func (m *mockSettingsService) Reload() error {
	return nil
}

func (m *mockSettingsService) SetValue(key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Resolve(_ context.Context, _ string) (domain.EffectiveSettings, error) {
	return domain.Resolve(m.global, domain.LocalOverride{})
}

func (m *mockSettingsService) SetLocalIndexation(_ context.Context, id string, enabled *bool) error {
	if m.err != nil {
		return m.err
	}
	m.local[id] = enabled
	return nil
}

// mockDispatcher accepts every event.
type mockDispatcher struct {
	sweeps atomic.Int32
}

func (m *mockDispatcher) OnDocumentChanged(_ context.Context, _, _ string) error {
	return nil
}

func (m *mockDispatcher) OnDocumentDeleted(_ context.Context, _ string) error {
	return nil
}

func (m *mockDispatcher) RequestConversion(_ context.Context, _ string, _ bool) error {
	return nil
}

func (m *mockDispatcher) EnqueueStale(_ context.Context) (int, error) {
	m.sweeps.Add(1)
	return 0, nil
}

// mockWorkerPool blocks in Start until Stop.
type mockWorkerPool struct {
	once    sync.Once
	stopped chan struct{}
}

func newMockWorkerPool() *mockWorkerPool {
	return &mockWorkerPool{stopped: make(chan struct{})}
}

func (m *mockWorkerPool) Start(ctx context.Context) error {
	select {
	case <-m.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockWorkerPool) Stop() error {
	m.once.Do(func() { close(m.stopped) })
	return nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	documents  *mockDocumentService
	converter  *mockConverterService
	settings   *mockSettingsService
	dispatcher *mockDispatcher
}

// setupTestServices installs mock services and returns a cleanup function
// restoring the previous ones.
func setupTestServices() func() {
	cleanup, _ := installTestServices()
	return cleanup
}

func installTestServices() (func(), *testServices) {
	oldDocuments := documentService
	oldConverter := converterService
	oldSettings := settingsService
	oldDispatcher := dispatcher
	oldWorkers := workerPool

	svc := &testServices{
		documents:  &mockDocumentService{},
		converter:  &mockConverterService{},
		settings:   newMockSettingsService(),
		dispatcher: &mockDispatcher{},
	}
	documentService = svc.documents
	converterService = svc.converter
	settingsService = svc.settings
	dispatcher = svc.dispatcher
	workerPool = newMockWorkerPool()

	return func() {
		documentService = oldDocuments
		converterService = oldConverter
		settingsService = oldSettings
		dispatcher = oldDispatcher
		workerPool = oldWorkers
	}, svc
}
