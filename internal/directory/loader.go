// Package directory loads the canonical area directory from an HH.ru-style
// tree endpoint and derives the domestic subset the resolver operates on.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/geo-reconciler/app/models"
)

// DefaultRootGroupID is the national root group the engine filters to.
const DefaultRootGroupID = "113"

// LoaderConfig configures the directory loader.
type LoaderConfig struct {
	BaseURL        string
	Timeout        time.Duration
	NationalRootID string
}

// Loader fetches the area tree and materializes it into an immutable
// Directory snapshot. The walk order of the upstream tree is the stable
// ordering contract the resolver's tie-breaks rely on.
type Loader struct {
	cfg    LoaderConfig
	client *http.Client
	logger *zap.Logger
}

// areaNode is one node of the upstream tree payload.
type areaNode struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Areas []areaNode `json:"areas"`
}

// NewLoader creates a loader. Zero config fields get defaults.
func NewLoader(cfg LoaderConfig, logger *zap.Logger) *Loader {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.NationalRootID == "" {
		cfg.NationalRootID = DefaultRootGroupID
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// NationalRootID returns the configured national root group id.
func (l *Loader) NationalRootID() string {
	return l.cfg.NationalRootID
}

// Load fetches and flattens the directory tree. Every node becomes an entry
// carrying its parent's name and the id of its top-level ancestor; sequence
// numbers follow the depth-first walk.
func (l *Loader) Load(ctx context.Context) (*models.Directory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("directory: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: fetch %s: %w", l.cfg.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory: fetch %s: unexpected status %d", l.cfg.BaseURL, resp.StatusCode)
	}

	var roots []areaNode
	if err := json.NewDecoder(resp.Body).Decode(&roots); err != nil {
		return nil, fmt.Errorf("directory: decode payload: %w", err)
	}

	dir := models.NewDirectory(time.Now().UTC().Format("20060102T150405"))
	walk(roots, "", "", "", dir)

	l.logger.Info("directory loaded",
		zap.Int("entries", dir.Len()),
		zap.Duration("duration", time.Since(start)),
		zap.String("version", dir.Version()))

	return dir, nil
}

// walk flattens the tree depth-first. The root group id is the id of the
// top-level node each entry descends from.
func walk(nodes []areaNode, parentName, parentID, rootID string, dir *models.Directory) {
	for _, node := range nodes {
		currentRoot := rootID
		if currentRoot == "" {
			currentRoot = parentID
		}
		if currentRoot == "" {
			currentRoot = node.ID
		}

		dir.Add(models.Area{
			Name:         node.Name,
			ID:           node.ID,
			ParentRegion: parentName,
			RootGroupID:  currentRoot,
		})

		if len(node.Areas) > 0 {
			walk(node.Areas, node.Name, node.ID, currentRoot, dir)
		}
	}
}
