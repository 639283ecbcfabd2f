package export

type ExportRequest struct {
	ProjectName string  `json:"project_name"`
	Format      string  `json:"format"`
	FrameRate   float64 `json:"frame_rate"`
	OutputDir   string  `json:"output_dir"`
	MediaURL    string  `json:"media_url"`
}

type ExportResponse struct {
	Status     string `json:"status"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
	CueCount   int    `json:"cue_count"`
	SRTURL     string `json:"srt_url"`
}
