package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

type MockSlideParser struct {
	mock.Mock
}

func (m *MockSlideParser) Parse(ctx context.Context, markdown string, rules []entities.LayoutRule) (*entities.ParsedPresentation, error) {
	args := m.Called(ctx, markdown, rules)
	if p := args.Get(0); p != nil {
		return p.(*entities.ParsedPresentation), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) Load(ctx context.Context) ([]entities.LayoutRule, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]entities.LayoutRule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRuleRepository) Source() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRuleRepository) File() string {
	args := m.Called()
	return args.String(0)
}

type MockFileWatcher struct {
	mock.Mock
}

func (m *MockFileWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	args := m.Called(ctx, path)
	if ch := args.Get(0); ch != nil {
		return ch.(<-chan ports.FileChangeEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFileWatcher) Stop() error {
	args := m.Called()
	return args.Error(0)
}

type MockHTTPServer struct {
	mock.Mock
}

func (m *MockHTTPServer) Start(ctx context.Context, port int, host string) error {
	args := m.Called(ctx, port, host)
	return args.Error(0)
}

func (m *MockHTTPServer) Stop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockHTTPServer) NotifyClients(event ports.UpdateEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockHTTPServer) IsRunning() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockHTTPServer) SetPresentation(presentation *entities.ParsedPresentation) {
	m.Called(presentation)
}

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

// recordingLogger keeps log messages for assertions
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func (l *recordingLogger) Debug(msg string, _ ...interface{}) { l.record(msg) }
func (l *recordingLogger) Info(msg string, _ ...interface{})  { l.record(msg) }
func (l *recordingLogger) Warn(msg string, _ ...interface{})  { l.record(msg) }
func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.record(msg) }

var (
	_ ports.SlideParser         = (*MockSlideParser)(nil)
	_ ports.RuleRepository      = (*MockRuleRepository)(nil)
	_ ports.FileWatcher         = (*MockFileWatcher)(nil)
	_ ports.HTTPServer          = (*MockHTTPServer)(nil)
	_ ports.PresentationService = (*MockPresentationService)(nil)
	_ ports.Monitor             = (*MockMonitor)(nil)
	_ ports.Logger              = (*recordingLogger)(nil)
)
