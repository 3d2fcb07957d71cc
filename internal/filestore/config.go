package filestore

// Provider identifies the file storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds all settings needed to connect to an object store.
type Config struct {
	Provider Provider `yaml:"provider"`

	// Endpoint is the host:port of the storage server, e.g. "localhost:9000".
	Endpoint string `yaml:"endpoint"`

	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`

	// Region is used by region-aware backends (e.g. AWS S3).
	// Leave empty for MinIO.
	Region string `yaml:"region"`

	// DefaultBucket is used when a table declares no bucket option. Ping
	// checks it exists when set.
	DefaultBucket string `yaml:"default_bucket"`
}

// DefaultConfig returns a local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
	}
}
