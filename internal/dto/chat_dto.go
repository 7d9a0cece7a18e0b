package dto

// ChatRequest is the single chat operation's input, parsed from a multipart
// form. UserQuery stays required even when an image is supplied; the image
// path replaces it with a fixed placeholder before prompting.
type ChatRequest struct {
	SessionId string `form:"session_id" validate:"required"`
	UserQuery string `form:"user_query" validate:"required"`
	ImageURL  string `form:"image_url" validate:"omitempty,url"`
	Image     []byte `form:"-"`
}

// ProductDTO is the citation-filtered product shape on the wire.
type ProductDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

// ChatResponse is the raw outbound object. Deliberately envelope-free: the
// reply plus only the retrieved products the model named in it.
type ChatResponse struct {
	Response string       `json:"response"`
	Products []ProductDTO `json:"products"`
}

// HealthResponse reports the read-only stores the service booted with.
type HealthResponse struct {
	CatalogSize    int    `json:"catalog_size"`
	TextIndexSize  int    `json:"text_index_size"`
	ImageIndexSize int    `json:"image_index_size"`
	VectorBackend  string `json:"vector_backend"`
}
