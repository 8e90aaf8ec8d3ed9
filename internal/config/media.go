package config

import "time"

// MediaSettings is the read-only view of configuration consumed by the media
// attacher. It is built once, after defaults are applied, and never mutated.
type MediaSettings struct {
	DrupalBaseURL        string
	IncludeMediaUseList  bool
	MediaFileDirectories string
	HTTPTimeout          time.Duration
	VerifyCA             bool
	StrictStatus         bool

	tags map[string]struct{}
}

// NewMediaSettings builds settings from explicit values. An empty tag list
// admits every media use term.
func NewMediaSettings(baseURL string, tags []string, includeUseList bool, fileDirectories string, timeout time.Duration, verifyCA bool) MediaSettings {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout * time.Second
	}
	return MediaSettings{
		DrupalBaseURL:        baseURL,
		IncludeMediaUseList:  includeUseList,
		MediaFileDirectories: fileDirectories,
		HTTPTimeout:          timeout,
		VerifyCA:             verifyCA,
		tags:                 set,
	}
}

// MediaSettings returns the media attacher settings derived from c.
func (c *Config) MediaSettings() MediaSettings {
	settings := NewMediaSettings(
		c.Drupal.BaseURL,
		c.Media.DrupalMediaTags,
		c.Media.IncludeMediaUseList,
		c.Media.MediaFileDirectories,
		time.Duration(c.Drupal.HTTPTimeout)*time.Second,
		c.Drupal.VerifyCA,
	)
	settings.StrictStatus = c.Media.StrictStatus
	return settings
}

// TagAllowed reports whether a media use term URL passes the tag allowlist.
func (s MediaSettings) TagAllowed(termURL string) bool {
	if len(s.tags) == 0 {
		return true
	}
	_, ok := s.tags[termURL]
	return ok
}

// TagCount returns the number of configured media use tags.
func (s MediaSettings) TagCount() int {
	return len(s.tags)
}
