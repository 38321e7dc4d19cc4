package unity

import "fmt"

// VersionMetadata describes one Unity release: its version, the base URL its
// metadata was discovered under, and an independent package list per target
// platform. Records are produced by the catalog discovery layer and owned by
// the cache once added.
type VersionMetadata struct {
	// Version identifies the release and never changes after creation.
	Version Version `json:"version"`
	// BaseURL is where relative package URLs of this release resolve from.
	BaseURL string `json:"baseUrl,omitempty"`
	// MacPackages are the packages offered for macOS.
	MacPackages []Package `json:"macPackages,omitempty"`
	// WinPackages are the packages offered for Windows.
	WinPackages []Package `json:"winPackages,omitempty"`
	// LinuxPackages are the packages offered for Linux.
	LinuxPackages []Package `json:"linuxPackages,omitempty"`
}

// platformSlot maps a platform to its package list field. Every accessor and
// the merge go through this single dispatch so a platform's data can never
// end up in another platform's slot.
func (m *VersionMetadata) platformSlot(p Platform) (*[]Package, error) {
	switch p {
	case PlatformMac:
		return &m.MacPackages, nil
	case PlatformWindows:
		return &m.WinPackages, nil
	case PlatformLinux:
		return &m.LinuxPackages, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidPlatform, p)
	}
}

// GetPackages returns a copy of the package list for the given platform.
func (m *VersionMetadata) GetPackages(p Platform) ([]Package, error) {
	slot, err := m.platformSlot(p)
	if err != nil {
		return nil, err
	}

	if *slot == nil {
		return nil, nil
	}

	packages := make([]Package, len(*slot))
	copy(packages, *slot)

	return packages, nil
}

// SetPackages replaces the package list for the given platform.
func (m *VersionMetadata) SetPackages(p Platform, packages []Package) error {
	slot, err := m.platformSlot(p)
	if err != nil {
		return err
	}

	*slot = packages

	return nil
}

// FindPackage looks up a package by name on the given platform,
// case-insensitively. A miss is reported via the boolean.
func (m *VersionMetadata) FindPackage(p Platform, name string) (Package, bool, error) {
	slot, err := m.platformSlot(p)
	if err != nil {
		return Package{}, false, err
	}

	pkg, ok := FindPackage(*slot, name)

	return pkg, ok, nil
}

// Merge folds the incoming record into m. The base URL and each platform's
// package list are taken from the incoming record only when present there;
// an absent field never erases existing data. The version is left untouched.
func (m *VersionMetadata) Merge(incoming VersionMetadata) {
	if incoming.BaseURL != "" {
		m.BaseURL = incoming.BaseURL
	}

	for _, p := range []Platform{PlatformMac, PlatformWindows, PlatformLinux} {
		src, err := incoming.platformSlot(p)
		if err != nil || *src == nil {
			continue
		}

		dst, err := m.platformSlot(p)
		if err != nil {
			continue
		}

		*dst = *src
	}
}

// Clone returns a deep copy of the record so callers never alias the
// cache's internal slices.
func (m *VersionMetadata) Clone() VersionMetadata {
	cloned := *m

	for _, p := range []Platform{PlatformMac, PlatformWindows, PlatformLinux} {
		src, _ := m.platformSlot(p)
		if *src == nil {
			continue
		}

		packages := make([]Package, len(*src))
		copy(packages, *src)

		dst, _ := cloned.platformSlot(p)
		*dst = packages
	}

	return cloned
}
