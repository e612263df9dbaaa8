package models

import "time"

type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Property is a rental property owned by a single user. RentalIncome and
// Expenses are not authoritative inputs: they are overwritten with the
// aggregator's output whenever a document is added, edited or removed.
type Property struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	OwnerID       string     `json:"owner_id" gorm:"index"`
	Name          string     `json:"name"`
	Address       Address    `json:"address" gorm:"serializer:json"`
	PurchasePrice float64    `json:"purchase_price"`
	CurrentValue  float64    `json:"current_value"`
	RentalIncome  float64    `json:"rental_income"`
	Expenses      float64    `json:"expenses"`
	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
	Documents     []Document `json:"documents,omitempty" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type PortfolioSummary struct {
	TotalProperties int     `json:"total_properties"`
	TotalValue      float64 `json:"total_value"`
	TotalIncome     float64 `json:"total_income"`
	TotalExpenses   float64 `json:"total_expenses"`
	NetCashFlow     float64 `json:"net_cash_flow"`
}
