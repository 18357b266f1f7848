package api

// About is the static service description served at GET /api/v1/about.
type About struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
	Contact     Contact  `json:"contact"`
}

// Contact lists support channels.
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

var aboutContent = About{
	Title: "Crop Recommendation System",
	Description: "Helps farmers select the best crop to grow based on soil and climate conditions, " +
		"using a reference dataset of crop growing conditions.",
	Parameters: []string{
		"nitrogen", "phosphorus", "potassium", "temperature", "humidity", "ph", "rainfall",
	},
	Contact: Contact{
		Email: "support@croprecommendation.com",
		Phone: "+91 93607 57708",
	},
}
