package httpapi

// remoteRefRequest is the wire shape of one remote asset reference.
type remoteRefRequest struct {
	URL          string `json:"url"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
}

// enqueueRequest is the POST /process request body.
type enqueueRequest struct {
	Videos    []remoteRefRequest          `json:"videos"`
	Templates map[string]remoteRefRequest `json:"templates"`
}

// jobResponse is the shared shape returned by both POST /process and
// GET /process/{jobId}.
type jobResponse struct {
	JobID                     string       `json:"jobId"`
	Status                    string       `json:"status"`
	Progress                  int          `json:"progress"`
	QueuePosition             int          `json:"queuePosition"`
	EstimatedWaitMs           int64        `json:"estimatedWaitMs"`
	EstimatedWaitSeconds      int64        `json:"estimatedWaitSeconds"`
	AverageJobDurationMs      int64        `json:"averageJobDurationMs"`
	AverageJobDurationSeconds int64        `json:"averageJobDurationSeconds"`
	OwnerActiveJobs           int          `json:"ownerActiveJobs"`
	OwnerJobLimit             int          `json:"ownerJobLimit"`
	Metrics                   jobMetrics   `json:"metrics"`
	CreatedAt                 string       `json:"createdAt,omitempty"`
	UpdatedAt                 string       `json:"updatedAt,omitempty"`
	Message                   string       `json:"message,omitempty"`
	Error                     string       `json:"error,omitempty"`
	Result                    []resultItem `json:"result,omitempty"`
}

type jobMetrics struct {
	CompletedVariants int `json:"completedVariants"`
	TotalVariants     int `json:"totalVariants"`
}

type resultItem struct {
	Variant  string `json:"variant"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
