package cryptoprov

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/spf13/afero"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xcsr", "cryptoprov")

// EngineLoader is interface for loading engine by manufacturer
type EngineLoader func(cfg *EngineConfig) (KeyEngine, error)

var (
	lockLoaders sync.RWMutex
	loaders     = make(map[string]EngineLoader)
)

// Register engine loader by manufacturer
func Register(manufacturer string, loader EngineLoader) error {
	lockLoaders.Lock()
	defer lockLoaders.Unlock()

	if _, ok := loaders[manufacturer]; ok {
		return errors.Errorf("already registered: %s", manufacturer)
	}

	loaders[manufacturer] = loader

	return nil
}

// Unregister engine loader by manufacturer
func Unregister(manufacturer string) (EngineLoader, error) {
	lockLoaders.Lock()
	defer lockLoaders.Unlock()

	if loader, ok := loaders[manufacturer]; ok {
		delete(loaders, manufacturer)
		return loader, nil
	}

	return nil, errors.Errorf("not registered: %s", manufacturer)
}

// Registered returns sorted list of registered engines
func Registered() []string {
	lockLoaders.RLock()
	defer lockLoaders.RUnlock()

	list := []string{}
	for m := range loaders {
		list = append(list, m)
	}
	sort.Strings(list)
	return list
}

// NewEngine returns engine for the given configuration
func NewEngine(cfg *EngineConfig) (KeyEngine, error) {
	lockLoaders.RLock()
	loader, ok := loaders[cfg.Manufacturer]
	lockLoaders.RUnlock()

	if !ok {
		return nil, errors.Errorf("engine not registered: %s", cfg.Manufacturer)
	}

	engine, err := loader(cfg)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to load engine: %s", cfg.Manufacturer)
	}

	logger.KV(xlog.DEBUG, "manufacturer", engine.Manufacturer(), "model", engine.Model())
	return engine, nil
}

// LoadEngine loads engine from configuration file.
// If configLocation is empty, the default in-memory engine is returned.
func LoadEngine(fs afero.Fs, configLocation string) (KeyEngine, error) {
	cfg := &EngineConfig{Manufacturer: DefaultManufacturer}
	if configLocation != "" {
		var err error
		cfg, err = LoadEngineConfig(fs, configLocation)
		if err != nil {
			return nil, err
		}
	}
	return NewEngine(cfg)
}
