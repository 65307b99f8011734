package fmi

import "sync"

// LibraryManager is a process-wide cache of loaded FMU libraries keyed by
// resolved archive path, with an additional shortcut-name alias map. It
// never evicts — a loaded library is assumed cheap to keep and expensive
// to reload (§3 "C5 Library manager": "process-wide cache of loaded FMU
// libraries keyed by path/shortcut, mutex-guarded, never evicts").
type LibraryManager struct {
	mu         sync.Mutex
	libraries  map[string]*Library
	shortcuts  map[string]string
}

var (
	defaultManager     *LibraryManager
	defaultManagerOnce sync.Once
)

// DefaultLibraryManager returns the process-wide singleton instance.
func DefaultLibraryManager() *LibraryManager {
	defaultManagerOnce.Do(func() {
		defaultManager = NewLibraryManager()
	})
	return defaultManager
}

// NewLibraryManager returns a fresh, empty manager — used by tests that
// want isolation from the process-wide singleton.
func NewLibraryManager() *LibraryManager {
	return &LibraryManager{
		libraries: make(map[string]*Library),
		shortcuts: make(map[string]string),
	}
}

// AddShortcut registers name as an alias for fmuLocation, resolved through
// GetLibrary the same as a literal path.
func (m *LibraryManager) AddShortcut(name, fmuLocation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shortcuts[name] = fmuLocation
}

// GetLibrary returns the cached Library for libFile (resolving it through
// the shortcut table first), loading and caching it on first reference.
func (m *LibraryManager) GetLibrary(libFile string, opts LoadOptions) (*Library, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := libFile
	if target, ok := m.shortcuts[libFile]; ok {
		key = target
	}

	if lib, ok := m.libraries[key]; ok {
		return lib, nil
	}

	lib, err := LoadFMU(key, opts)
	if err != nil {
		return nil, err
	}
	m.libraries[key] = lib
	return lib, nil
}

// CreateCoSimulationObject loads (or reuses) the library at fmuIdentifier
// and instantiates a co-simulation instance named objectName.
func (m *LibraryManager) CreateCoSimulationObject(fmuIdentifier, objectName string) (*Instance, error) {
	lib, err := m.GetLibrary(fmuIdentifier, LoadOptions{Kind: KindCoSimulation})
	if err != nil {
		return nil, err
	}
	return NewInstance(lib, objectName, nil)
}

// CreateModelExchangeObject loads (or reuses) the library at fmuIdentifier
// and instantiates a model-exchange instance named objectName.
func (m *LibraryManager) CreateModelExchangeObject(fmuIdentifier, objectName string) (*Instance, error) {
	lib, err := m.GetLibrary(fmuIdentifier, LoadOptions{Kind: KindModelExchange})
	if err != nil {
		return nil, err
	}
	return NewInstance(lib, objectName, nil)
}
