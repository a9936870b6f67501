package dto

// ServerDetails describes the host that reported an error, at the time it occurred.
type ServerDetails struct {
	EnvironmentName string `json:"environment_name,omitempty"`
	Hostname        string `json:"hostname,omitempty"`
	ProjectRoot     string `json:"project_root,omitempty"`
	// PID is nil when the process id could not be determined.
	PID   *int   `json:"pid,omitempty"`
	Time  string `json:"time,omitempty"`
	Stats *Stats `json:"stats,omitempty"`
}

// Stats carries memory and load figures for the reporting host.
type Stats struct {
	Mem  Memory `json:"mem"`
	Load Load   `json:"load"`
}

// Memory figures are in megabytes.
type Memory struct {
	Total     float64 `json:"total"`
	Free      float64 `json:"free"`
	Buffers   float64 `json:"buffers"`
	Cached    float64 `json:"cached"`
	FreeTotal float64 `json:"free_total"`
}

// Load holds the 1, 5 and 15 minute load averages.
type Load struct {
	One     float64 `json:"one"`
	Five    float64 `json:"five"`
	Fifteen float64 `json:"fifteen"`
}
