package types

// Entity is one named span found in a review.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// ReviewRequest is the body accepted by the JSON review endpoints.
type ReviewRequest struct {
	Review   string `json:"review" form:"review"`
	Category string `json:"category" form:"category"`
}
