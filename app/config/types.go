package config

// FeedSeed describes one feed to register in the store on startup.
type FeedSeed struct {
	Name            string `yaml:"name"`
	URL             string `yaml:"url"`
	RefreshInterval int    `yaml:"refresh_interval"` // seconds
}

// SeedFile is the on-disk format of a feed seed file.
type SeedFile struct {
	Feeds []FeedSeed `yaml:"feeds"`
}
