package control

import "github.com/ColonelBlimp/cwdecoder/internal/descriptor"

// LayerSummary is one velocity layer as surfaced across the control
// surface (spec.md §4.7 "descriptor summary").
type LayerSummary struct {
	Name  string `json:"name"`
	LoVel uint8  `json:"lovel"`
	HiVel uint8  `json:"hivel"`
}

// Summary is the discovery-facing view of an instrument: enough to
// populate a picker UI and show contributor credit, without exposing
// the full key table (spec.md §4.7).
type Summary struct {
	Folder       string                     `json:"folder"`
	Name         string                     `json:"name"`
	Description  string                     `json:"description,omitempty"`
	Layers       []LayerSummary             `json:"layers"`
	FilesFormat  string                     `json:"files_format"`
	Settings     map[string]interface{}     `json:"settings"`
	Contribution descriptor.Contribution    `json:"contribution"`
}

func summarize(folder string, d *descriptor.Descriptor) Summary {
	names := d.Layers()
	layers := make([]LayerSummary, 0, len(names))
	for _, name := range names {
		l, _, _ := d.Layer(name)
		layers = append(layers, LayerSummary{Name: l.Name, LoVel: l.LoVel, HiVel: l.HiVel})
	}
	return Summary{
		Folder:       folder,
		Name:         d.Name,
		Description:  d.Description,
		Layers:       layers,
		FilesFormat:  d.FilesFormat,
		Settings:     d.Settings,
		Contribution: d.Contribution,
	}
}
