package vision

// Wire types for the Vision images:annotate REST API. Raw payloads are
// decoded into these and immediately normalized; nothing outside this
// package sees them.

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateEntry struct {
	Image        imagePayload  `json:"image"`
	Features     []feature     `json:"features"`
	ImageContext *imageContext `json:"imageContext,omitempty"`
}

type imagePayload struct {
	Content string       `json:"content,omitempty"`
	Source  *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	ImageURI string `json:"imageUri"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type imageContext struct {
	LanguageHints   []string         `json:"languageHints,omitempty"`
	CropHintsParams *cropHintsParams `json:"cropHintsParams,omitempty"`
	LatLongRect     *latLongRect     `json:"latLongRect,omitempty"`
}

type cropHintsParams struct {
	AspectRatios []float64 `json:"aspectRatios"`
}

type latLongRect struct {
	MinLatLng latLng `json:"minLatLng"`
	MaxLatLng latLng `json:"maxLatLng"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type annotateResponse struct {
	Responses []annotationResult `json:"responses"`
	Error     *apiError          `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type annotationResult struct {
	FaceAnnotations            []wireFace       `json:"faceAnnotations"`
	LabelAnnotations           []wireEntity     `json:"labelAnnotations"`
	LandmarkAnnotations        []wireEntity     `json:"landmarkAnnotations"`
	LocalizedObjectAnnotations []wireObject     `json:"localizedObjectAnnotations"`
	ImageProperties            *wireImageProps  `json:"imagePropertiesAnnotation"`
	SafeSearch                 *wireSafeSearch  `json:"safeSearchAnnotation"`
	Error                      *apiError        `json:"error,omitempty"`
}

type wireFace struct {
	JoyLikelihood      string `json:"joyLikelihood"`
	SorrowLikelihood   string `json:"sorrowLikelihood"`
	AngerLikelihood    string `json:"angerLikelihood"`
	SurpriseLikelihood string `json:"surpriseLikelihood"`
}

type wireEntity struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

type wireObject struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type wireImageProps struct {
	DominantColors wireDominantColors `json:"dominantColors"`
}

type wireDominantColors struct {
	Colors []wireColorInfo `json:"colors"`
}

type wireColorInfo struct {
	Color         wireColor `json:"color"`
	Score         float64   `json:"score"`
	PixelFraction float64   `json:"pixelFraction"`
}

type wireColor struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

type wireSafeSearch struct {
	Adult    string `json:"adult"`
	Spoof    string `json:"spoof"`
	Medical  string `json:"medical"`
	Violence string `json:"violence"`
	Racy     string `json:"racy"`
}
