// Package config loads the JSON configuration of the hook daemon: logging,
// the location of the hook document and plugins, and the sandbox session.
package config
