// preferences.go
package projectprefs

import (
	"context"
	"errors"
)

// Storage keys of the four projects preferences.
const (
	KeyDefaultFilter = "sonarqube.projects.default"
	KeyView          = "sonarqube.projects.view"
	KeyVisualization = "sonarqube.projects.visualization"
	KeySort          = "sonarqube.projects.sort"
)

// Sentinel values stored under KeyDefaultFilter.
const (
	FilterFavorite = "favorite"
	FilterAll      = "all"
)

// Preferences gives typed access to the projects preferences kept in a Store.
//
// Writes are best-effort: a failing store (most often a full quota) turns the
// write into a no-op and the error is discarded after a Debug log line. Reads
// never fail; an absent key or a read error both report the preference as unset.
// Preferences keeps no state of its own, every call goes to the store.
type Preferences struct {
	config *Config
}

// New creates a Preferences configured by the given options.
func New(opts ...Option) *Preferences {
	cfg := &Config{}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.store == nil {
		cfg.store = unavailableStore{}
	}
	if cfg.logger == nil {
		cfg.logger = NewDefaultLogger()
	}

	return &Preferences{
		config: cfg,
	}
}

// IsFavoriteSet reports whether the default filter is "favorite".
func (p *Preferences) IsFavoriteSet(ctx context.Context) bool {
	v, _ := p.get(ctx, KeyDefaultFilter)
	return v == FilterFavorite
}

// IsAllSet reports whether the default filter is "all".
func (p *Preferences) IsAllSet(ctx context.Context) bool {
	v, _ := p.get(ctx, KeyDefaultFilter)
	return v == FilterAll
}

// SaveAll stores "all" as the default filter.
func (p *Preferences) SaveAll(ctx context.Context) {
	p.save(ctx, KeyDefaultFilter, FilterAll)
}

// SaveFavorite stores "favorite" as the default filter.
func (p *Preferences) SaveFavorite(ctx context.Context) {
	p.save(ctx, KeyDefaultFilter, FilterFavorite)
}

// DefaultFilter returns the raw default filter, if any.
func (p *Preferences) DefaultFilter(ctx context.Context) (string, bool) {
	return p.get(ctx, KeyDefaultFilter)
}

// SaveView stores the view mode. An empty view clears the preference.
func (p *Preferences) SaveView(ctx context.Context, view string) {
	p.save(ctx, KeyView, view)
}

// View returns the stored view mode. The value is not checked against Views.
func (p *Preferences) View(ctx context.Context) (string, bool) {
	return p.get(ctx, KeyView)
}

// SaveVisualization stores the visualization mode. An empty value clears the preference.
func (p *Preferences) SaveVisualization(ctx context.Context, visualization string) {
	p.save(ctx, KeyVisualization, visualization)
}

// Visualization returns the stored visualization mode.
func (p *Preferences) Visualization(ctx context.Context) (string, bool) {
	return p.get(ctx, KeyVisualization)
}

// SaveSort stores the sort specifier. An empty value clears the preference.
func (p *Preferences) SaveSort(ctx context.Context, sort string) {
	p.save(ctx, KeySort, sort)
}

// Sort returns the stored sort specifier.
func (p *Preferences) Sort(ctx context.Context) (string, bool) {
	return p.get(ctx, KeySort)
}

func (p *Preferences) get(ctx context.Context, key string) (string, bool) {
	v, err := p.config.store.GetItem(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			p.config.logger.Debug("Preference read failed, treating as unset", "key", key, "error", err)
		}
		return "", false
	}
	return v, true
}

// save sets key to value, or removes key when value is empty.
// Storage errors are discarded.
func (p *Preferences) save(ctx context.Context, key, value string) {
	var err error
	if value != "" {
		err = p.config.store.SetItem(ctx, key, value)
	} else {
		err = p.config.store.RemoveItem(ctx, key)
	}
	if err != nil {
		p.config.logger.Debug("Preference write dropped", "key", key, "error", err)
	}
}
