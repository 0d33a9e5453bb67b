package http

// Mobile screen descriptors: the server renders complete screen definitions
// and the mobile client draws whatever shape it receives.

type FormField struct {
	ID          string `json:"id"`
	Label       string `json:"label,omitempty"`
	Type        string `json:"type"`
	Required    bool   `json:"required,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Value       string `json:"value,omitempty"`
}

type ActionButton struct {
	Text   string         `json:"text"`
	Style  string         `json:"style"`
	URL    string         `json:"url"`
	Method string         `json:"method"`
	Body   map[string]any `json:"body,omitempty"`
}

type SelectionOption struct {
	Text        string `json:"text"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Method      string `json:"method"`
}

type FormScreen struct {
	Kind        string         `json:"kind"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Fields      []FormField    `json:"fields"`
	Buttons     []ActionButton `json:"buttons"`
}

type SelectionScreen struct {
	Kind        string            `json:"kind"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Options     []SelectionOption `json:"options"`
}

const (
	ScreenKindForm      = "FORM"
	ScreenKindSelection = "SELECTION"
)
