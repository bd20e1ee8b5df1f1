//go:build !gcloud

package config

// Validate accepts any combination locally: without NATS_URL events stay in-process.
func (c *PubSubConfig) Validate() error {
	return nil
}
