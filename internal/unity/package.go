package unity

import (
	"path"
	"strings"
)

const (
	// EditorPackageName is the well-known name of the main editor package.
	EditorPackageName = "Unity"

	// legacyInstallerExtension is assumed when a package URL yields a
	// filename without any extension. Early macOS releases published bare
	// installer names.
	legacyInstallerExtension = "pkg"
)

// EULA is an additional license agreement attached to a package.
type EULA struct {
	// Message is shown to the user before installation.
	Message string `json:"message,omitempty"`
	// Label names the agreement.
	Label string `json:"label,omitempty"`
	// URL points to the agreement text.
	URL string `json:"url,omitempty"`
}

// Package describes one downloadable component of a Unity release on a
// single platform. It is a pure value and holds no reference to the release
// that offers it.
type Package struct {
	// Name identifies the package within its platform's list.
	Name string `json:"name"`
	// Title is the human-readable package name.
	Title string `json:"title,omitempty"`
	// Description is the human-readable summary.
	Description string `json:"description,omitempty"`
	// URL is the download location, absolute or relative to the
	// release's base URL.
	URL string `json:"url"`
	// Install marks packages selected for installation by default.
	Install bool `json:"install,omitempty"`
	// Mandatory marks packages that cannot be deselected.
	Mandatory bool `json:"mandatory,omitempty"`
	// DownloadSize is the size of the download in bytes.
	DownloadSize int64 `json:"downloadSize,omitempty"`
	// InstalledSize is the size on disk after installation in bytes.
	InstalledSize int64 `json:"installedSize,omitempty"`
	// Version is the package's own version string.
	Version string `json:"version,omitempty"`
	// Extension overrides the file extension derived from the URL.
	Extension string `json:"extension,omitempty"`
	// Hidden packages are not offered in interactive selection.
	Hidden bool `json:"hidden,omitempty"`
	// Sync names another package that should be installed together
	// with this one.
	Sync string `json:"sync,omitempty"`
	// Checksum is the content hash published for the download.
	Checksum string `json:"checksum,omitempty"`
	// RequiresUnity marks packages that need the main editor installed.
	RequiresUnity bool `json:"requiresUnity,omitempty"`
	// AppIdentifier is the application bundle identifier, where applicable.
	AppIdentifier string `json:"appIdentifier,omitempty"`
	// EULAs are up to two additional license agreements.
	EULAs []EULA `json:"eulas,omitempty"`
}

// ResolveFileName determines the local file name to save the download as.
//
// The last path segment of an absolute URL is used; a relative URL is taken
// as the file name itself. If the extension hint disagrees with the derived
// extension, the name becomes "<name>.<hint>". A name without any extension
// falls back to the legacy installer extension.
func (p Package) ResolveFileName() string {
	name := p.URL
	if strings.Contains(name, "://") {
		name = path.Base(name)
	}

	// Strip query noise left over from CDN links.
	if cut := strings.IndexAny(name, "?#"); cut >= 0 {
		name = name[:cut]
	}

	ext := strings.TrimPrefix(path.Ext(name), ".")

	if p.Extension != "" && !strings.EqualFold(ext, p.Extension) {
		return p.Name + "." + p.Extension
	}

	if ext == "" {
		return p.Name + "." + legacyInstallerExtension
	}

	return name
}

// FindPackage returns the package with the given name from the list,
// comparing case-insensitively. Absence is an expected outcome and is
// reported via the boolean, not an error.
func FindPackage(packages []Package, name string) (Package, bool) {
	for _, pkg := range packages {
		if strings.EqualFold(pkg.Name, name) {
			return pkg, true
		}
	}

	return Package{}, false
}
