package selfupdate

import (
	"bytes"
	"context"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"runtime"

	goupdate "github.com/doitdistributed/go-update"
	"gopkg.in/yaml.v3"

	"github.com/uinstall/uinstall/internal/config"
	"github.com/uinstall/uinstall/internal/logger"
	"github.com/uinstall/uinstall/internal/version"

	// Ensure SHA512 is available for checksum verification.
	_ "crypto/sha512"
)

const (
	// ManifestFilename is the manifest name under the update URL.
	ManifestFilename = "uinstall-version.yaml"

	// defaultExecutableMode is applied to the replaced binary.
	defaultExecutableMode os.FileMode = 0o755

	// checksumFunction is used to verify the downloaded binary.
	checksumFunction crypto.Hash = crypto.SHA512
)

var (
	errAlreadyRunning = errors.New("an update is already running")
	errNoUpdateURL    = errors.New("no update URL configured")
	errBadHTTPStatus  = errors.New("unexpected http status")
	errNoBinary       = errors.New("no binary published for this OS")
)

// Manifest describes a published uinstall release.
type Manifest struct {
	// Version is the semantic version of the release.
	Version string `yaml:"version"`
	// Files maps a GOOS name to the binary published for it.
	Files map[string]ManifestFile `yaml:"files"`
}

// ManifestFile is one downloadable binary of a release.
type ManifestFile struct {
	// Name is the file name under the update URL.
	Name string `yaml:"name"`
	// Checksum is the base64-encoded SHA-512 of the file.
	Checksum string `yaml:"checksum"`
}

// Options are inputs accepted by the self-update entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
}

// Run checks the published manifest and replaces the running binary when a
// different version is available.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "self-update")

	if isUpdateRunningNow(ctx) {
		return errAlreadyRunning
	}

	marker, err := os.Create(markerPath())
	if err != nil {
		return fmt.Errorf("create update marker: %w", err)
	}

	if err = marker.Close(); err != nil {
		return fmt.Errorf("close update marker: %w", err)
	}

	defer func() {
		_ = os.Remove(markerPath())
	}()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if cfg.UpdateURL == "" {
		return errNoUpdateURL
	}

	client := &http.Client{Timeout: cfg.Timeout}

	manifest, err := fetchManifest(ctx, client, cfg.UpdateURL)
	if err != nil {
		return fmt.Errorf("fetch update manifest: %w", err)
	}

	if manifest.Version == version.Short() {
		logger.Infof(ctx, "Already running the published version %s", manifest.Version)
		return nil
	}

	file, ok := manifest.Files[runtime.GOOS]
	if !ok {
		return fmt.Errorf("%w: %s", errNoBinary, runtime.GOOS)
	}

	logger.InfoKV(ctx, "Updating binary",
		"from", version.Short(), "to", manifest.Version, "file", file.Name)

	payload, err := fetchFile(ctx, client, cfg.UpdateURL, file.Name)
	if err != nil {
		return fmt.Errorf("download update: %w", err)
	}

	checksum, err := base64.StdEncoding.DecodeString(file.Checksum)
	if err != nil {
		return fmt.Errorf("decode checksum: %w", err)
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate running binary: %w", err)
	}

	applyOptions := goupdate.Options{
		TargetPath: executable,
		TargetMode: defaultExecutableMode,
		Checksum:   checksum,
		Hash:       checksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(payload), applyOptions); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	// go-update leaves the previous binary next to the new one.
	oldBinary := executable + ".old"
	if _, err = os.Stat(oldBinary); err == nil {
		_ = os.Remove(oldBinary)
	}

	logger.Infof(ctx, "Updated to version %s", manifest.Version)

	return nil
}

// fetchManifest downloads and decodes the release manifest.
func fetchManifest(ctx context.Context, client *http.Client, updateURL string) (*Manifest, error) {
	data, err := fetchFile(ctx, client, updateURL, ManifestFilename)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err = yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &manifest, nil
}

// fetchFile downloads a file from the update URL folder.
func fetchFile(ctx context.Context, client *http.Client, updateURL, fileName string) ([]byte, error) {
	parsed, err := url.Parse(updateURL)
	if err != nil {
		return nil, err
	}

	// path.Join normalizes duplicate slashes when composing the URL path.
	parsed.Path = path.Join(parsed.Path, fileName)
	finalURL := parsed.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", finalURL, response.Status, errBadHTTPStatus)
	}

	return io.ReadAll(response.Body)
}
