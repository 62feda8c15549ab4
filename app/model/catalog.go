package model

// ModelInfo describes one selectable Gemini model.
type ModelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// DefaultModelID is substituted when a request names an unknown model.
const DefaultModelID = "gemini-1.5-flash"

// FallbackModelID is tried once when the selected model is not found.
const FallbackModelID = "gemini-pro"

// AvailableModels is the fixed allow-list served by /api/models.
var AvailableModels = []ModelInfo{
	{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash", Desc: "Fast & cost-efficient"},
	{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro", Desc: "High quality, complex tasks"},
	{ID: "gemini-2.0-flash-exp", Name: "Gemini 2.0 Flash (Exp)", Desc: "Next-gen speed & intelligence"},
	{ID: "gemini-pro", Name: "Gemini 1.0 Pro", Desc: "Standard legacy model"},
}

// IsKnownModel reports whether id is in the allow-list.
func IsKnownModel(id string) bool {
	for _, m := range AvailableModels {
		if m.ID == id {
			return true
		}
	}
	return false
}
