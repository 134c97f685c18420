package control

// Progress is one load_instrument progress event (spec.md §4.3).
type Progress struct {
	Progress int    `json:"progress"`
	Loaded   int    `json:"loaded"`
	Total    int    `json:"total"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
}

func progressLoading(loaded, total int) Progress {
	pct := 0
	if total > 0 {
		pct = (loaded * 100) / total
	}
	return Progress{Progress: pct, Loaded: loaded, Total: total, Status: "loading"}
}

func progressDone(total int) Progress {
	return Progress{Progress: 100, Loaded: total, Total: total, Status: "done"}
}

func progressError(message string) Progress {
	return Progress{Progress: -1, Status: "error", Message: message}
}
