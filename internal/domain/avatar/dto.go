package avatar

// MintRequest carries the multipart form fields for minting; the image comes
// from the "image" file part.
type MintRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Personality string `json:"personality" validate:"omitempty,max=100"`
	NFTType     string `json:"nft_type" validate:"required,nft_type"`
}
