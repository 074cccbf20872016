package config

// SiteConfig holds per-host checker overrides. Keys in File.Sites are
// hostnames (e.g. "www.example.edu"); every URL on that host inherits the
// overrides.
type SiteConfig struct {
	// Standard overrides the global accessibility standard for this host.
	Standard string `yaml:"standard,omitempty"`

	// TimeoutSeconds overrides the global per-URL timeout for this host.
	// Zero means use the global timeout.
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`

	// IgnoreCodes lists rule codes to suppress on this host, e.g. known
	// false positives in a shared page template.
	IgnoreCodes []string `yaml:"ignoreCodes,omitempty"`

	// HideElements is a CSS selector for regions to exclude from
	// checking (cookie banners, third-party widgets).
	HideElements string `yaml:"hideElements,omitempty"`
}

// File represents the structure of the .a11yctl configuration file.
type File struct {
	// Sites maps hostnames to their checker overrides.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains overrides applied to every host unless a
	// site-specific entry replaces them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the merged configuration for a hostname.
// Site-specific values replace defaults field by field.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if site, ok := cf.Sites[host]; ok {
		if site.Standard != "" {
			result.Standard = site.Standard
		}
		if site.TimeoutSeconds != 0 {
			result.TimeoutSeconds = site.TimeoutSeconds
		}
		if len(site.IgnoreCodes) > 0 {
			result.IgnoreCodes = site.IgnoreCodes
		}
		if site.HideElements != "" {
			result.HideElements = site.HideElements
		}
	}

	return result
}
