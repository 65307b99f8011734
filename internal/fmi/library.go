package fmi

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Library is a loaded FMU: its parsed catalog, bound function tables, and
// the extraction directory it owns (§3 "Lifecycle": "Catalogs and function
// tables are created once per archive when the library is loaded and
// shared by reference across instances").
type Library struct {
	Catalog *Catalog

	path          string
	extractDir    string
	ownsExtractDir bool
	deleteOnClose bool

	resolver SymbolResolver
	handle   interface{ close() error }

	base       *baseFunctions
	common     *commonFunctions
	me         *modelExchangeFunctions
	cs         *coSimFunctions
	kind       FMUKind
	instanceCount int
}

// LoadOptions configures LoadFMU (§4.3 "loadFMU").
type LoadOptions struct {
	// ExtractPath, if non-empty, is used verbatim as the extraction
	// directory, overriding the derived-path policy.
	ExtractPath string
	// DeleteOnClose removes the extraction directory when Close is called,
	// mirroring deleteFMUdirectory.
	DeleteOnClose bool
	// Kind selects which function table (model-exchange or co-simulation)
	// to bind after the shared library loads.
	Kind FMUKind
}

// LoadFMU extracts archivePath (or treats it as an already-extracted
// directory), parses its model description, resolves the platform shared
// library, and binds the required ABI symbol set (§4.3).
func LoadFMU(archivePath string, opts LoadOptions) (*Library, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, newLoadError(LoadCodeInvalidArchive, "stat archive", err)
	}

	lib := &Library{path: archivePath, deleteOnClose: opts.DeleteOnClose, kind: opts.Kind}

	if info.IsDir() {
		lib.extractDir = archivePath
		lib.ownsExtractDir = false
	} else {
		dir, err := resolveExtractDir(archivePath, opts.ExtractPath)
		if err != nil {
			return nil, err
		}
		if err := extractArchive(archivePath, dir); err != nil {
			return nil, err
		}
		lib.extractDir = dir
		lib.ownsExtractDir = true
	}

	catalog, err := LoadCatalogFile(filepath.Join(lib.extractDir, "modelDescription.xml"))
	if err != nil {
		lib.cleanupExtractDir()
		return nil, err
	}
	lib.Catalog = catalog

	if err := lib.loadSharedLibrary(opts.Kind); err != nil {
		lib.cleanupExtractDir()
		return nil, err
	}

	return lib, nil
}

// resolveExtractDir implements the §4.3 policy: (a) explicit path wins, (b)
// otherwise extract alongside the archive using its stem, (c) fall back to
// the system temp directory if that parent isn't writable.
func resolveExtractDir(archivePath, explicit string) (string, error) {
	if explicit != "" {
		if err := os.MkdirAll(explicit, 0o755); err != nil {
			return "", newLoadError(LoadCodeInvalidArchive, "mkdir extract path", err)
		}
		return explicit, nil
	}

	stem := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	sibling := filepath.Join(filepath.Dir(archivePath), stem)
	if _, err := os.Stat(sibling); err == nil {
		return sibling, nil
	}
	if err := os.MkdirAll(sibling, 0o755); err == nil {
		return sibling, nil
	}

	tmp := filepath.Join(os.TempDir(), "fmi-"+stem)
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return "", newLoadError(LoadCodeInvalidArchive, "mkdir extract path", err)
	}
	return tmp, nil
}

// extractArchive unpacks a zip archive into dir, rejecting path traversal
// and leaving nothing behind on failure (§9 "Invalid archive": "no
// extraction directory left behind").
func extractArchive(archivePath, dir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		os.RemoveAll(dir)
		return newLoadError(LoadCodeInvalidArchive, "open zip", err)
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(dir, f.Name)
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) && target != filepath.Clean(dir) {
			os.RemoveAll(dir)
			return newLoadError(LoadCodeInvalidArchive, "extract zip", errors.Errorf("entry %q escapes extraction dir", f.Name))
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				os.RemoveAll(dir)
				return newLoadError(LoadCodeInvalidArchive, "extract zip", err)
			}
			continue
		}
		if err := extractZipFile(f, target); err != nil {
			os.RemoveAll(dir)
			return newLoadError(LoadCodeInvalidArchive, "extract zip", err)
		}
	}
	return nil
}

func extractZipFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// platformArch returns the binaries/ subdirectory name for the running
// host (§6.1).
func platformArch() string {
	bits := "64"
	if strings.Contains(runtime.GOARCH, "386") || strings.Contains(runtime.GOARCH, "arm") && !strings.Contains(runtime.GOARCH, "64") {
		bits = "32"
	}
	switch runtime.GOOS {
	case "windows":
		return "win" + bits
	case "darwin":
		return "darwin" + bits
	default:
		return "linux" + bits
	}
}

func platformExt() string {
	switch runtime.GOOS {
	case "windows":
		return "dll"
	case "darwin":
		return "dylib"
	default:
		return "so"
	}
}

// loadSharedLibrary resolves and loads the platform shared object for the
// requested kind, trying a debug-suffixed variant as a fallback (§4.3
// "loadSharedLibrary").
func (l *Library) loadSharedLibrary(kind FMUKind) error {
	identifier := l.Catalog.CSIdentifier
	if kind == KindModelExchange {
		identifier = l.Catalog.MEIdentifier
	}
	if identifier == "" {
		return newLoadError(LoadCodeMissingLibrary, "resolve model identifier",
			errors.New("model description declares no identifier for the requested kind"))
	}

	dir := filepath.Join(l.extractDir, "binaries", platformArch())
	ext := platformExt()
	candidates := []string{
		filepath.Join(dir, identifier+"."+ext),
		filepath.Join(dir, identifier+"d."+ext),
	}

	var handle *unixSharedLibrary
	var lastErr error
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			lastErr = err
			continue
		}
		handle, lastErr = openSharedLibrary(path)
		if lastErr == nil {
			break
		}
	}
	if handle == nil {
		return newLoadError(LoadCodeMissingLibrary, "resolve shared library path", lastErr)
	}
	l.handle = handle
	l.resolver = handle

	base, err := bindBase(l.resolver)
	if err != nil {
		return err
	}
	common, err := bindCommon(l.resolver)
	if err != nil {
		return err
	}
	l.base = base
	l.common = common

	if kind == KindModelExchange {
		l.me = bindModelExchange(l.resolver)
	} else {
		l.cs = bindCoSimulation(l.resolver)
	}
	return nil
}

// ResourceLocation returns the file:// URI an instantiated FMU should use
// to find its resources/ directory (§6.1).
func (l *Library) ResourceLocation() string {
	path := filepath.Join(l.extractDir, "resources")
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

// CreateInstance instantiates a new FMU component bound to this library's
// function tables (§4.3 "produces per-instance handles").
func (l *Library) CreateInstance(name string, callbacks *CallbackFunctions, visible, loggingOn bool) (Component, error) {
	if l.base == nil {
		return 0, newLoadError(LoadCodeInstantiate, "create instance", errors.New("library has no bound base function table"))
	}
	comp, err := callInstantiate(l.base.instantiate, name, l.Catalog.GUID, l.ResourceLocation(), l.kind, callbacks, visible, loggingOn)
	if err != nil {
		return 0, newLoadError(LoadCodeInstantiate, "fmi2Instantiate", err)
	}
	l.instanceCount++
	return comp, nil
}

// ReleaseInstance invokes the optional free-instance entry point exactly
// once per created instance (§3 "Lifecycle").
func (l *Library) ReleaseInstance(comp Component) {
	if l.common != nil && l.common.freeInstance.bound() {
		callFreeInstance(l.common.freeInstance, comp)
	}
	if l.instanceCount > 0 {
		l.instanceCount--
	}
}

// Close releases the loaded shared object and, if requested, recursively
// removes the extraction directory (§3 "The library owns the extraction
// directory and optionally deletes it at destruction").
func (l *Library) Close() error {
	var err error
	if l.handle != nil {
		err = l.handle.close()
	}
	l.cleanupExtractDir()
	return err
}

func (l *Library) cleanupExtractDir() {
	if l.ownsExtractDir && l.deleteOnClose && l.extractDir != "" {
		os.RemoveAll(l.extractDir)
	}
}
