package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) CreateDefaults(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockConfigLoader) GetGlobalPath() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfigLoader) GetLocalPath(dir string) string {
	args := m.Called(dir)
	return args.String(0)
}

type MockConfigMerger struct {
	mock.Mock
}

func (m *MockConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	args := m.Called(configs)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	args := m.Called(config, flags)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	args := m.Called(config)
	return args.Get(0).(*entities.Config)
}

func TestConfigService_LoadConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("merges every layer in order", func(t *testing.T) {
		loader := new(MockConfigLoader)
		merger := new(MockConfigMerger)
		service := NewConfigService(loader, merger)

		defaults := &entities.Config{Server: entities.ServerConfig{Host: "localhost", Port: 3030}}
		global := &entities.Config{Server: entities.ServerConfig{Port: 4000}}
		local := &entities.Config{Layout: entities.LayoutConfig{RulesFile: "rules.json"}}
		merged := &entities.Config{Server: entities.ServerConfig{Host: "localhost", Port: 4000}, Layout: entities.LayoutConfig{RulesFile: "rules.json"}}
		withEnv := &entities.Config{Server: entities.ServerConfig{Host: "0.0.0.0", Port: 4000}, Layout: entities.LayoutConfig{RulesFile: "rules.json"}}
		final := &entities.Config{Server: entities.ServerConfig{Host: "0.0.0.0", Port: 5000}, Layout: entities.LayoutConfig{RulesFile: "rules.json"}}
		flags := map[string]interface{}{"port": 5000}

		merger.On("Merge", []*entities.Config(nil)).Return(defaults)
		loader.On("LoadGlobal", ctx).Return(global, nil)
		loader.On("LoadLocal", ctx, "/talks").Return(local, nil)
		merger.On("Merge", []*entities.Config{defaults, global, local}).Return(merged)
		merger.On("ApplyEnvVars", merged).Return(withEnv)
		merger.On("ApplyFlags", withEnv, flags).Return(final)

		config, err := service.LoadConfig(ctx, "/talks", flags)
		require.NoError(t, err)
		assert.Equal(t, final, config)

		loader.AssertExpectations(t)
		merger.AssertExpectations(t)
	})

	t.Run("missing local config is skipped", func(t *testing.T) {
		loader := new(MockConfigLoader)
		merger := new(MockConfigMerger)
		service := NewConfigService(loader, merger)

		defaults := &entities.Config{Server: entities.ServerConfig{Port: 3030}}

		merger.On("Merge", []*entities.Config(nil)).Return(defaults)
		loader.On("LoadGlobal", ctx).Return(nil, nil)
		loader.On("LoadLocal", ctx, "/talks").Return(nil, nil)
		merger.On("Merge", []*entities.Config{defaults}).Return(defaults)
		merger.On("ApplyEnvVars", defaults).Return(defaults)
		merger.On("ApplyFlags", defaults, mock.Anything).Return(defaults)

		config, err := service.LoadConfig(ctx, "/talks", nil)
		require.NoError(t, err)
		assert.Equal(t, 3030, config.Server.Port)
	})

	t.Run("global config error", func(t *testing.T) {
		loader := new(MockConfigLoader)
		merger := new(MockConfigMerger)
		service := NewConfigService(loader, merger)

		merger.On("Merge", []*entities.Config(nil)).Return(&entities.Config{})
		loader.On("LoadGlobal", ctx).Return(nil, errors.New("permission denied"))

		_, err := service.LoadConfig(ctx, "/talks", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading global config")
	})

	t.Run("local config error", func(t *testing.T) {
		loader := new(MockConfigLoader)
		merger := new(MockConfigMerger)
		service := NewConfigService(loader, merger)

		merger.On("Merge", []*entities.Config(nil)).Return(&entities.Config{})
		loader.On("LoadGlobal", ctx).Return(nil, nil)
		loader.On("LoadLocal", ctx, "/talks").Return(nil, errors.New("bad toml"))

		_, err := service.LoadConfig(ctx, "/talks", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading local config")
	})

	t.Run("invalid final config", func(t *testing.T) {
		loader := new(MockConfigLoader)
		merger := new(MockConfigMerger)
		service := NewConfigService(loader, merger)

		invalid := &entities.Config{Server: entities.ServerConfig{Port: -1}}

		merger.On("Merge", []*entities.Config(nil)).Return(invalid)
		loader.On("LoadGlobal", ctx).Return(nil, nil)
		loader.On("LoadLocal", ctx, "/talks").Return(nil, nil)
		merger.On("Merge", []*entities.Config{invalid}).Return(invalid)
		merger.On("ApplyEnvVars", invalid).Return(invalid)
		merger.On("ApplyFlags", invalid, mock.Anything).Return(invalid)

		_, err := service.LoadConfig(ctx, "/talks", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "final config validation")
	})
}

func TestConfigService_ValidateConfig(t *testing.T) {
	service := NewConfigService(new(MockConfigLoader), new(MockConfigMerger))

	assert.Error(t, service.ValidateConfig(nil))
	assert.NoError(t, service.ValidateConfig(&entities.Config{}))
	assert.Error(t, service.ValidateConfig(&entities.Config{Logging: entities.LoggingConfig{Level: "loud"}}))
}

func TestConfigService_CreateGlobalConfig(t *testing.T) {
	ctx := context.Background()
	loader := new(MockConfigLoader)
	service := NewConfigService(loader, new(MockConfigMerger))

	loader.On("GetGlobalPath").Return("/home/user/.config/deckflow/config.toml")
	loader.On("CreateDefaults", ctx, "/home/user/.config/deckflow/config.toml").Return(nil)

	require.NoError(t, service.CreateGlobalConfig(ctx))
	loader.AssertExpectations(t)
}

func TestConfigService_Sources(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global.toml")
	local := filepath.Join(dir, "deckflow.toml")

	loader := new(MockConfigLoader)
	loader.On("GetGlobalPath").Return(global)
	loader.On("GetLocalPath", dir).Return(local)
	service := NewConfigService(loader, new(MockConfigMerger))

	assert.Empty(t, service.Sources(dir))

	require.NoError(t, os.WriteFile(local, []byte("[render]\n"), 0600))
	assert.Equal(t, []string{local}, service.Sources(dir))

	require.NoError(t, os.WriteFile(global, []byte("[render]\n"), 0600))
	assert.Equal(t, []string{global, local}, service.Sources(dir))
}
