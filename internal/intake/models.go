package intake

// SubmitRequest is the contact form payload. The JSON keys match what the
// listing page sends.
type SubmitRequest struct {
	Name       string `json:"name" binding:"required,max=200"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone" binding:"omitempty,max=40"`
	Message    string `json:"message" binding:"required"`
	Timeline   string `json:"timeline" binding:"required,timeline"`
	TimeOnPage int    `json:"timeOnPage" binding:"omitempty,gte=0"`
	VisitCount int    `json:"visitCount" binding:"omitempty,gte=0"`
	Referrer   string `json:"referrer" binding:"omitempty,max=2000"`
}
