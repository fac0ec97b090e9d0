package config

// applyLocalDatasetDefaults fills in the docker-compose minio credentials when
// a local endpoint is configured without them.
func applyLocalDatasetDefaults(cfg *DatasetConfig) {
	if cfg.Endpoint == "" {
		return
	}
	cfg.AccessKey = firstNonEmpty(cfg.AccessKey, "sdkchurn")
	cfg.SecretKey = firstNonEmpty(cfg.SecretKey, "sdkchurn123")
	cfg.Bucket = firstNonEmpty(cfg.Bucket, "sdkchurn-datasets")
}
