package http

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fredcamaral/deckflow/internal/adapters/secondary/logger"
	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

type MockPresentationService struct {
	mock.Mock
}

func (m *MockPresentationService) LoadPresentation(ctx context.Context, path string) (*entities.ParsedPresentation, error) {
	args := m.Called(ctx, path)
	if p := args.Get(0); p != nil {
		return p.(*entities.ParsedPresentation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPresentationService) ParsePresentation(ctx context.Context, markdown string) (*entities.ParsedPresentation, error) {
	args := m.Called(ctx, markdown)
	if p := args.Get(0); p != nil {
		return p.(*entities.ParsedPresentation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPresentationService) ParseWithRules(ctx context.Context, markdown string, rules []entities.LayoutRule) (*entities.ParsedPresentation, error) {
	args := m.Called(ctx, markdown, rules)
	if p := args.Get(0); p != nil {
		return p.(*entities.ParsedPresentation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPresentationService) Rules(ctx context.Context) ([]entities.LayoutRule, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]entities.LayoutRule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPresentationService) WatchPresentation(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	args := m.Called(ctx, path)
	if ch := args.Get(0); ch != nil {
		return ch.(<-chan ports.FileChangeEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPageRenderer struct {
	mock.Mock
}

func (m *MockPageRenderer) RenderPreview(ctx context.Context, p *entities.ParsedPresentation) ([]byte, error) {
	args := m.Called(ctx, p)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPageRenderer) RenderSlide(ctx context.Context, s *entities.ParsedSlide) ([]byte, error) {
	args := m.Called(ctx, s)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSlideRenderer struct {
	mock.Mock
}

func (m *MockSlideRenderer) Render(content string) string {
	args := m.Called(content)
	return args.String(0)
}

func (m *MockSlideRenderer) RenderNotes(notes string) string {
	args := m.Called(notes)
	return args.String(0)
}

func (m *MockSlideRenderer) WriteHighlightCSS(w io.Writer) error {
	args := m.Called(w)
	if css := args.String(0); css != "" {
		_, _ = io.WriteString(w, css)
	}
	return args.Error(1)
}

type MockMonitor struct {
	mock.Mock
}

func (m *MockMonitor) RecordParse(slides int, duration time.Duration) {
	m.Called(slides, duration)
}

func (m *MockMonitor) RecordReload(err error) {
	m.Called(err)
}

func (m *MockMonitor) RecordHTTPRequest(status int) {
	m.Called(status)
}

func (m *MockMonitor) RecordConnection(open bool) {
	m.Called(open)
}

func (m *MockMonitor) Health() map[string]interface{} {
	args := m.Called()
	return args.Get(0).(map[string]interface{})
}

type testServer struct {
	*Server
	presenter *MockPresentationService
	page      *MockPageRenderer
	styles    *MockSlideRenderer
}

func testConfig() *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{
			Host:        "127.0.0.1",
			Environment: "development",
		},
	}
}

func newTestServer(cfg *entities.Config) *testServer {
	if cfg == nil {
		cfg = testConfig()
	}

	presenter := &MockPresentationService{}
	page := &MockPageRenderer{}
	styles := &MockSlideRenderer{}

	return &testServer{
		Server:    NewServer(presenter, page, styles, cfg, logger.NewNop()),
		presenter: presenter,
		page:      page,
		styles:    styles,
	}
}

func samplePresentation() *entities.ParsedPresentation {
	notes := "Remember the demo"
	return &entities.ParsedPresentation{
		Slides: []entities.ParsedSlide{
			{
				Index:         0,
				Title:         "Intro",
				Content:       "# Intro",
				HTML:          `<div class="layout-hero"><h1 id="intro" data-source-line="0">Intro</h1></div>`,
				LineOffset:    0,
				AppliedLayout: "Hero",
			},
			{
				Index:      1,
				Title:      "Details",
				Content:    "## Details\n\nBody",
				HTML:       `<h2 data-source-line="4">Details</h2><p onclick="alert(1)">Body</p><script>alert(2)</script>`,
				Notes:      &notes,
				NotesHTML:  "<p>Remember the demo</p>",
				LineOffset: 4,
			},
		},
	}
}
