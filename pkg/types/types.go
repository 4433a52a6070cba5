package types

// FocusRegion is a rectangle of interest in source-image pixel coordinates.
// X and Y locate the top-left corner; the rectangle must lie fully within
// the source image bounds.
type FocusRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ColourResult holds the representative colours extracted from a focus
// region. Every field is a 6-digit uppercase hex string with a leading "#".
type ColourResult struct {
	// Average is the mean colour of the sampled region.
	Average string `json:"average"`
	// Brightest is the colour of the perceptually brightest sampled pixel.
	Brightest string `json:"brightest"`
	// Opposite is the channel-wise inverse of Average.
	Opposite string `json:"opposite"`
	// TextColour is black or white, whichever reads better on Average.
	TextColour string `json:"text_colour"`
}

// Box is a normalized bounding box with coordinates in [0,1] range.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// FocalPoint is a suggested point of interest in an image, normalized to
// [0,1]. Produced by the focus suggesters for callers that have no stored
// focal point for a media item.
type FocalPoint struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
	Cx         float64 `json:"cx"`
	Cy         float64 `json:"cy"`
}
