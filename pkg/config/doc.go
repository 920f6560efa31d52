// Package config holds the pipeline's run configuration as a single
// immutable record built once at startup and threaded explicitly through
// every stage, rather than read ad hoc from global flags at the point of
// use. An optional YAML file supplies defaults that command-line flags
// then override.
package config
