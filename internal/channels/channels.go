package channels

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Channel is one monitored YouTube channel.
type Channel struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	URL            string `yaml:"url"`
	CreatorContext string `yaml:"creator_context"`
	Disabled       bool   `yaml:"disabled"`
}

var titleCaser = cases.Title(language.English)

// DisplayName returns the configured name, or one derived from the channel
// URL handle when no name is set.
func (c Channel) DisplayName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	if handle := handleFromURL(c.URL); handle != "" {
		return titleCaser.String(strings.ReplaceAll(handle, "-", " "))
	}
	return c.ID
}

// SourceURL returns the address yt-dlp should enumerate for this channel.
func (c Channel) SourceURL() string {
	if url := strings.TrimSpace(c.URL); url != "" {
		return url
	}
	return "https://www.youtube.com/channel/" + c.ID
}

func handleFromURL(url string) string {
	idx := strings.Index(url, "@")
	if idx < 0 {
		return ""
	}
	handle := url[idx+1:]
	if cut := strings.IndexAny(handle, "/?"); cut >= 0 {
		handle = handle[:cut]
	}
	return strings.TrimSpace(handle)
}

type registryFile struct {
	Channels []Channel `yaml:"channels"`
}

// Registry holds the monitored channel set, keyed by channel ID.
type Registry struct {
	channels []Channel
	byID     map[string]Channel
}

// Load reads the channel registry from a YAML file. A missing file yields an
// empty registry so the daemon can run before any channel is configured.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{byID: map[string]Channel{}}, nil
		}
		return nil, fmt.Errorf("read channels config: %w", err)
	}

	var parsed registryFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse channels config: %w", err)
	}

	registry := &Registry{byID: make(map[string]Channel, len(parsed.Channels))}
	for i, channel := range parsed.Channels {
		channel.ID = strings.TrimSpace(channel.ID)
		channel.URL = strings.TrimSpace(channel.URL)
		if channel.ID == "" && channel.URL == "" {
			return nil, fmt.Errorf("channels[%d]: id or url is required", i)
		}
		if channel.ID == "" {
			channel.ID = channel.URL
		}
		if _, dup := registry.byID[channel.ID]; dup {
			return nil, fmt.Errorf("channels[%d]: duplicate channel %q", i, channel.ID)
		}
		registry.byID[channel.ID] = channel
		registry.channels = append(registry.channels, channel)
	}
	return registry, nil
}

// All returns every configured channel in file order.
func (r *Registry) All() []Channel {
	cp := make([]Channel, len(r.channels))
	copy(cp, r.channels)
	return cp
}

// Enabled returns the channels that should be polled.
func (r *Registry) Enabled() []Channel {
	var enabled []Channel
	for _, channel := range r.channels {
		if !channel.Disabled {
			enabled = append(enabled, channel)
		}
	}
	return enabled
}

// Get returns the channel with the given ID.
func (r *Registry) Get(id string) (Channel, bool) {
	channel, ok := r.byID[id]
	return channel, ok
}

// Len returns the number of configured channels.
func (r *Registry) Len() int {
	return len(r.channels)
}

// IDs returns the sorted channel identifiers, for stable display.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
