// File: internal/mocks/mocks.go
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/honeybadger-loader/internal/config"
)

// -- Provider Mock --

// MockProvider mocks config.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Getenv(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockProvider) Property(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// NewMockProvider returns a provider answering from the given maps and ""
// for any other key.
func NewMockProvider(env, props map[string]string) *MockProvider {
	m := new(MockProvider)
	for k, v := range env {
		m.On("Getenv", k).Return(v)
	}
	for k, v := range props {
		m.On("Property", k).Return(v)
	}
	m.On("Getenv", mock.Anything).Return("")
	m.On("Property", mock.Anything).Return("")
	return m
}

// -- Config Mock --

// MockConfig mocks config.Interface.
type MockConfig struct {
	mock.Mock
}

// NewMockConfig returns a MockConfig serving the sections of cfg.
func NewMockConfig(cfg *config.Config) *MockConfig {
	m := new(MockConfig)
	m.On("Logger").Return(cfg.Logger())
	m.On("Network").Return(cfg.Network())
	m.On("Honeybadger").Return(cfg.Honeybadger())
	return m
}

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Network() config.NetworkConfig {
	args := m.Called()
	return args.Get(0).(config.NetworkConfig)
}

func (m *MockConfig) Honeybadger() config.HoneybadgerConfig {
	args := m.Called()
	return args.Get(0).(config.HoneybadgerConfig)
}
