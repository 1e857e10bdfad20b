package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/model"
	"github.com/Carmen-Shannon/oxy-raymarch/log"
)

var logger = log.New("loader")

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeYAML selects the YAML model definition backend.
	BackendTypeYAML LoaderBackendType = iota
)

// DefaultWorkers is the number of files read concurrently by LoadAll.
const DefaultWorkers = 4

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache map[string]model.Model

	backend loaderBackend

	workers int
	pool    worker.DynamicWorkerPool
}

// Loader reads model definition files and caches the results by path.
type Loader interface {
	// Load reads one model file and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	// A definition without a name takes the file name without its extension.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: error naming the path if loading fails
	Load(path string) (model.Model, error)

	// LoadAll reads several model files concurrently on the loader's worker pool.
	// The models are returned in the order of paths.
	//
	// Parameters:
	//   - paths: the files to load
	//
	// Returns:
	//   - []model.Model: the models, in the order of paths; nil on error
	//   - error: the error of the earliest failing path, naming that path
	LoadAll(paths ...string) ([]model.Model, error)

	// LoadReader decodes a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key, also used as the model name when the definition has none
	//   - r: the reader providing the definition
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if decoding fails
	LoadReader(name string, r io.Reader) (model.Model, error)

	// Dump writes m in the loader's format. The output loads back into an equal model.
	//
	// Parameters:
	//   - w: the destination
	//   - m: the model to write
	//
	// Returns:
	//   - error: error if writing fails
	Dump(w io.Writer, m model.Model) error

	// Get retrieves a cached model by path or name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by path or name
	Models() map[string]model.Model
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeYAML)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		modelCache: make(map[string]model.Model),
		workers:    DefaultWorkers,
	}

	switch backendType {
	case BackendTypeYAML:
		l.backend = newYAMLLoaderBackend()
	default:
		panic(fmt.Sprintf("loader: unknown backend type %d", backendType))
	}

	for _, option := range options {
		option(l)
	}

	// Idle workers exit after a second.
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	if err := resolveFormat(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	defer f.Close()

	m, err := l.backend.Decode(defaultName(path), f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.mu.Lock()
	l.modelCache[path] = m
	l.mu.Unlock()

	logger.Debugf("loaded %s: %q with %d triangles", path, m.Name(), m.TriangleCount())
	return m, nil
}

func (l *loader) LoadAll(paths ...string) ([]model.Model, error) {
	models := make([]model.Model, len(paths))
	errs := make([]error, len(paths))

	// The pool has no per-batch barrier, so a WaitGroup marks the end of this batch.
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				models[i], errs[i] = l.Load(path)
				return nil, nil
			},
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return models, nil
}

func (l *loader) LoadReader(name string, r io.Reader) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	m, err := l.backend.Decode(name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.mu.Lock()
	l.modelCache[name] = m
	l.mu.Unlock()

	return m, nil
}

func (l *loader) Dump(w io.Writer, m model.Model) error {
	if m == nil {
		return errors.New("loader: cannot dump a nil model")
	}
	return l.backend.Encode(w, m)
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

// resolveFormat checks that the file extension names a format the loader reads.
// Currently only YAML is supported.
func resolveFormat(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return nil
	default:
		return fmt.Errorf("failed to load %s: unsupported model format %q", path, ext)
	}
}

func defaultName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
