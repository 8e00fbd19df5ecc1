// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain manages the OpenAI API key in the OS keychain or
// credential store. The OPENAI_API_KEY environment variable always takes
// precedence over stored credentials, so CI and one-off runs never need to
// touch the keychain.
package keychain

import (
	"errors"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "revq"

// KeyAPIKey is the keychain entry holding the OpenAI API key.
const KeyAPIKey = "openai_api_key"

// EnvAPIKey is the environment variable that overrides the keychain.
const EnvAPIKey = "OPENAI_API_KEY"

// ErrNotFound is returned when no API key is stored.
var ErrNotFound = errors.New("api key not found")

// Manager provides thread-safe operations on the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

var (
	globalManager *Manager
	globalErr     error
	mu            sync.Mutex
)

// GetManager returns the global keychain manager, creating it on first call.
// Failed initialization is retried on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	globalManager, globalErr = newManager()
	if globalErr != nil {
		globalManager = nil
		return nil, globalErr
	}
	return globalManager, nil
}

func newManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// openRing opens the OS keyring using native platform backends.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowedBackends = []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.PassBackend,
		}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	default:
		allowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.PassBackend,
		}
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}

	return keyring.Open(cfg)
}

// SaveAPIKey stores the API key in the OS keychain.
func (m *Manager) SaveAPIKey(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{
		Key:   KeyAPIKey,
		Data:  []byte(key),
		Label: "revq OpenAI API key",
	})
}

// LoadAPIKey reads the API key from the OS keychain.
func (m *Manager) LoadAPIKey() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, err := m.ring.Get(KeyAPIKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(item.Data), nil
}

// DeleteAPIKey removes the API key from the OS keychain.
func (m *Manager) DeleteAPIKey() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.ring.Remove(KeyAPIKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// ResolveAPIKey returns the API key from the environment if set, otherwise
// from the OS keychain. Returns ErrNotFound when neither source has one.
func ResolveAPIKey() (string, error) {
	if env := strings.TrimSpace(os.Getenv(EnvAPIKey)); env != "" {
		return env, nil
	}
	m, err := GetManager()
	if err != nil {
		return "", err
	}
	return m.LoadAPIKey()
}
