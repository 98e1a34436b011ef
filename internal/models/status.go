package models

// StatusResponse describes a running server.
type StatusResponse struct {
	Status         string        `json:"status"`
	Model          string        `json:"model,omitempty"`
	ModelLoaded    bool          `json:"model_loaded"`
	Dimensions     int           `json:"dimensions,omitempty"`
	Sessions       int           `json:"sessions"`
	UptimeSeconds  int64         `json:"uptime_seconds"`
	StagedFiles    int           `json:"staged_files"`
	DiskUsageBytes *int64        `json:"disk_usage_bytes,omitempty"`
	Config         *StatusConfig `json:"config,omitempty"`
}

// StatusConfig is the subset of configuration reported by status.
type StatusConfig struct {
	ExplainTopN         int      `json:"explain_top_n"`
	ExplainModel        string   `json:"explain_model,omitempty"`
	DefaultTopN         int      `json:"default_top_n"`
	ResultsLimitOptions []int    `json:"results_limit_options,omitempty"`
	SupportedFormats    []string `json:"supported_formats,omitempty"`
	MaxFileSizeMB       int      `json:"max_file_size_mb"`
	UploadDir           string   `json:"upload_dir,omitempty"`
}
