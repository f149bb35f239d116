package points

// Receipt is a purchase receipt that has passed validation
type Receipt struct {
	Retailer     string `json:"retailer"`
	PurchaseDate string `json:"purchaseDate"` // YYYY-MM-DD
	PurchaseTime string `json:"purchaseTime"` // HH:MM, 24-hour
	Items        []Item `json:"items"`
	Total        string `json:"total"` // fixed two decimal places
}

// Item is a single line on a receipt
type Item struct {
	ShortDescription string `json:"shortDescription"`
	Price            string `json:"price"`
}
