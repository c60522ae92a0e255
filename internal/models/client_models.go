package models

import "time"

// Client is a customer of the shop.
type Client struct {
	ID        int64     `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Address   *string   `json:"address,omitempty" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Vehicle is a car registered to a client. Stored in the cars table.
type Vehicle struct {
	ID           int64     `json:"id" db:"id"`
	ClientID     int64     `json:"client_id" db:"client_id"`
	Make         string    `json:"make" db:"make"`
	Model        string    `json:"model" db:"model"`
	Year         *int      `json:"year,omitempty" db:"year"`
	Color        *string   `json:"color,omitempty" db:"color"`
	LicensePlate string    `json:"license_plate" db:"license_plate"`
	VIN          *string   `json:"vin,omitempty" db:"vin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// DisplayName is "Make Model" as shown on invoices.
func (v *Vehicle) DisplayName() string {
	if v == nil {
		return ""
	}
	if v.Model == "" {
		return v.Make
	}
	return v.Make + " " + v.Model
}
