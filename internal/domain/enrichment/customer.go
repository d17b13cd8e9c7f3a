package enrichment

// Address is a normalized postal address. Every component defaults to the
// empty string when the source field is absent.
type Address struct {
	Street  string `json:"street"`
	Street2 string `json:"street2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// Customer is a normalized customer record.
type Customer struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

// CustomerFromRecord normalizes a raw partner record. State and country are
// relation pairs on the wire and contribute their label only.
func CustomerFromRecord(rec Record) Customer {
	return Customer{
		ID:      rec.Int("id"),
		Name:    rec.Str("name"),
		Email:   rec.Str("email"),
		Phone:   rec.Str("phone"),
		Address: AddressFromRecord(rec),
	}
}

// AddressFromRecord extracts the address components of a raw partner record.
func AddressFromRecord(rec Record) Address {
	return Address{
		Street:  rec.Str("street"),
		Street2: rec.Str("street2"),
		City:    rec.Str("city"),
		State:   rec.Rel("state_id").Label,
		Zip:     rec.Str("zip"),
		Country: rec.Rel("country_id").Label,
	}
}
