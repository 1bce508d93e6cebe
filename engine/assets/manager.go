package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spaghettifunk/lumen/engine/assets/loaders"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

/**
 * @brief Tracks every file under the asset root, watches the tree for
 * changes and dispatches loads to the registered per-type loaders.
 */
type AssetManager struct {
	resolver *Resolver

	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]loaders.Loader

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	events   chan fsnotify.Event
	errors   chan error
}

func NewAssetManager(resolver *Resolver) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		resolver: resolver,
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]loaders.Loader),
		fsnotify: fsWatch,
		events:   make(chan fsnotify.Event),
		errors:   make(chan error),
		done:     make(chan struct{}),
	}, nil
}

// Initialize starts the watcher on the resolver's root and registers the
// default loader set. The converter is the external executable used for
// PNG to KTX conversion.
func (am *AssetManager) Initialize(converter string) error {
	go am.start()

	if err := am.addRecursive(am.resolver.Root()); err != nil {
		return err
	}

	am.RegisterLoader(metadata.ResourceTypeBinary, &loaders.BinaryLoader{})
	am.RegisterLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.RegisterLoader(metadata.ResourceTypeImage, loaders.NewImageLoader(converter))
	am.RegisterLoader(metadata.ResourceTypeMesh, &loaders.MeshLoader{})
	am.RegisterLoader(metadata.ResourceTypeBitmapFont, &loaders.BitmapFontLoader{})

	return nil
}

// Shutdown stops the watcher goroutine and closes the event channels.
func (am *AssetManager) Shutdown() {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.isClosed {
		return
	}
	am.isClosed = true
	close(am.done)
}

// Events exposes the filesystem change stream for hot-reload consumers.
func (am *AssetManager) Events() <-chan fsnotify.Event {
	return am.events
}

// Resolve maps an asset name to an absolute path under the asset root.
func (am *AssetManager) Resolve(name string) (string, error) {
	return am.resolver.Resolve(name)
}

// RegisterLoader installs the loader used for an asset type, replacing any
// previous one.
func (am *AssetManager) RegisterLoader(assetType metadata.ResourceType, loader loaders.Loader) {
	am.loaders[assetType] = loader
}

// LoadAsset resolves the named asset and hands it to the loader registered
// for its type. Every load gets a fresh identifier.
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	path, err := am.resolver.Resolve(name)
	if err != nil {
		return nil, err
	}

	loader, loaderExists := am.loaders[resourceType]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %d", resourceType)
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       resourceType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()

	resource, err := loader.Load(path, resourceType, params)
	if err != nil {
		return nil, err
	}
	resource.LoaderID = uuid.New().String()
	return resource, nil
}

func (am *AssetManager) UnloadAsset(resource *metadata.Resource) error {
	if resource == nil {
		return nil
	}
	loader, exists := am.loaders[determineAssetType(resource.FullPath)]
	if !exists {
		return nil
	}
	return loader.Unload(resource)
}

// addRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	am.mutex.RLock()
	closed := am.isClosed
	am.mutex.RUnlock()
	if closed {
		return errors.New("asset manager already closed")
	}
	return am.watchRecursive(name, false)
}

func (am *AssetManager) start() {
	for {
		select {
		case e := <-am.fsnotify.Events:
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name, false)
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
				am.fsnotify.Remove(e.Name)
			}
			// Do not stall the watcher when nobody consumes the stream.
			select {
			case am.events <- e:
			default:
			}

		case e := <-am.fsnotify.Errors:
			core.LogError(e.Error())
			select {
			case am.errors <- e:
			default:
			}

		case <-am.done:
			am.fsnotify.Close()
			close(am.events)
			close(am.errors)
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file.
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
}

func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.assets, path)
}

// determineAssetType maps a file extension to the resource type its loader
// handles.
func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".spv":
		return metadata.ResourceTypeShader
	case ".ktx", ".dds", ".png", ".jpg", ".jpeg", ".bmp", ".tiff":
		return metadata.ResourceTypeImage
	case ".gltf", ".glb", ".obj":
		return metadata.ResourceTypeMesh
	case ".fnt":
		return metadata.ResourceTypeBitmapFont
	default:
		return metadata.ResourceTypeBinary
	}
}
