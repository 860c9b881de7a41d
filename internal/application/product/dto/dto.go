package dto

// RemoveProductRequest unlinks a product from an owner.
type RemoveProductRequest struct {
	OwnerKey  string
	ProductID string
}

// RemoveProductResponse reports a removed product link.
type RemoveProductResponse struct {
	OwnerKey  string `json:"owner_key"`
	ProductID string `json:"product_id"`
}
