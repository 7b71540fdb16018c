package request

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,gt=0"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	Stock       int32  `json:"stock" binding:"gte=0"`
}
