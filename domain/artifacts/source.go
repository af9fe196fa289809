package artifacts

import "context"

// Source loads a complete model bundle. Load is called once at process start.
type Source interface {
	Load(ctx context.Context) (*Set, error)
}

// Publisher stores raw bundle files under a version
type Publisher interface {
	Publish(ctx context.Context, version string, files map[string][]byte) error
	ListVersions(ctx context.Context) ([]BundleInfo, error)
}
