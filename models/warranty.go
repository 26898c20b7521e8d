package models

// WarrantyCondition is a single warranty clause extracted from a document.
type WarrantyCondition struct {
	Text     string `json:"text" bson:"text"`
	Critical bool   `json:"critical,omitempty" bson:"critical,omitempty"`
}

// WarrantyItem is one extracted product's purchase/warranty record.
// Every field except ItemID may be absent; pointer fields keep absence
// distinct from the zero value so JSON nulls survive round trips.
type WarrantyItem struct {
	ItemID                    string              `json:"itemId" bson:"item_id"`
	ProductName               *string             `json:"product_name" bson:"product_name,omitempty"`
	Model                     *string             `json:"model" bson:"model,omitempty"`
	InvoiceNo                 *string             `json:"invoice_no" bson:"invoice_no,omitempty"`
	PurchaseDate              *string             `json:"purchase_date" bson:"purchase_date,omitempty"`
	PurchasePrice             *float64            `json:"purchase_price" bson:"purchase_price,omitempty"`
	GSTIN                     *string             `json:"gstin" bson:"gstin,omitempty"`
	SellerName                *string             `json:"seller_name" bson:"seller_name,omitempty"`
	WarrantyMonths            *int                `json:"warranty_months" bson:"warranty_months,omitempty"`
	WarrantyStart             *string             `json:"warranty_start" bson:"warranty_start,omitempty"`
	WarrantyEnd               *string             `json:"warranty_end" bson:"warranty_end,omitempty"`
	WarrantyConditions        []WarrantyCondition `json:"warranty_conditions" bson:"warranty_conditions,omitempty"`
	ExtendedWarrantyPurchased *bool               `json:"extended_warranty_purchased" bson:"extended_warranty_purchased,omitempty"`
	ServiceCenters            []string            `json:"service_centers" bson:"service_centers,omitempty"`
	SerialNo                  *string             `json:"serial_no" bson:"serial_no,omitempty"`
	ReturnWindowDays          *int                `json:"return_window_days" bson:"return_window_days,omitempty"`
	WarrantyNotes             *string             `json:"warranty_notes" bson:"warranty_notes,omitempty"`
}
