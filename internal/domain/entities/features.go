package entities

// ContentFeatures are the structural signals computed from one slide's HTML.
// They are the whole vocabulary available to layout rule conditions.
type ContentFeatures struct {
	HasHeading         bool `json:"hasHeading"`
	HasCards           bool `json:"hasCards"`
	HasList            bool `json:"hasList"`
	HasCodeBlock       bool `json:"hasCodeBlock"`
	HasBlockquote      bool `json:"hasBlockquote"`
	ImageCount         int  `json:"imageCount"`
	FigureCount        int  `json:"figureCount"`
	H3Count            int  `json:"h3Count"`
	TextParagraphCount int  `json:"textParagraphCount"`
}

// HasMedia returns true if the slide shows any image or figure
func (f ContentFeatures) HasMedia() bool {
	return f.ImageCount > 0 || f.FigureCount > 0
}

// LayoutResult is a laid out slide and the name of the layout applied to it.
// AppliedLayout is empty when the slide was left as rendered.
type LayoutResult struct {
	HTML          string
	AppliedLayout string
	Features      ContentFeatures
}
