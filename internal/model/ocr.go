package model

// Box is a pixel rectangle with the origin in the upper-left corner.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Word is a single recognized token.
type Word struct {
	Text       string  `json:"text"`
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
}

// Line groups words the engine placed on the same text line.
type Line struct {
	Paragraph int    `json:"paragraph"`
	Text      string `json:"text"`
	Box       Box    `json:"box"`
	Words     []Word `json:"words"`
}

// Record is one layout block reported by the engine.
type Record struct {
	Block      int     `json:"block"`
	Text       string  `json:"text"`
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
	Lines      []Line  `json:"lines"`
}

// OCRResult is the engine output for one stored file. The application never
// interprets it; it is only serialized for display.
type OCRResult struct {
	Engine        string   `json:"engine"`
	EngineVersion string   `json:"engine_version,omitempty"`
	Languages     []string `json:"languages,omitempty"`
	Source        string   `json:"source"`
	Width         int      `json:"width,omitempty"`
	Height        int      `json:"height,omitempty"`
	Pages         int      `json:"pages,omitempty"`
	Text          string   `json:"text"`
	Records       []Record `json:"records"`
	Tables        []Table  `json:"tables,omitempty"`
}

// Table is a grid detected on one page of a document upload.
type Table struct {
	Page       int           `json:"page"`
	Confidence float64       `json:"confidence"`
	HasGrid    bool          `json:"has_grid"`
	Rows       [][]TableCell `json:"rows"`
}

// TableCell is one cell of a Table. Spans are omitted when 1.
type TableCell struct {
	Text    string `json:"text"`
	RowSpan int    `json:"row_span,omitempty"`
	ColSpan int    `json:"col_span,omitempty"`
	Header  bool   `json:"header,omitempty"`
}
