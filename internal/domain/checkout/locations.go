package checkout

// PickupLocation is a physical collection point a shopper can choose.
type PickupLocation struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

var storeLocations = []PickupLocation{
	{ID: "main-store", Name: "Main Store - Nairobi CBD", Address: "Moi Avenue, Nairobi CBD"},
	{ID: "westlands", Name: "Westlands Branch", Address: "Westlands Mall, Westlands"},
	{ID: "garden-city", Name: "Garden City Branch", Address: "Garden City Mall, Thika Road"},
}

var pickupMtaaniLocations = []PickupLocation{
	{ID: "pm-nairobi-cbd", Name: "Nairobi CBD Hub", Address: "City Hall Way"},
	{ID: "pm-karen", Name: "Karen Pickup Point", Address: "Karen Shopping Centre"},
	{ID: "pm-ruaka", Name: "Ruaka Collection Point", Address: "Ruaka Town Centre"},
	{ID: "pm-westlands", Name: "Westlands Drop Point", Address: "Westlands Business District"},
}

// StoreLocations lists the branches offering in-store pickup.
func StoreLocations() []PickupLocation {
	out := make([]PickupLocation, len(storeLocations))
	copy(out, storeLocations)
	return out
}

// PickupMtaaniLocations lists the PickupMtaani collection points.
func PickupMtaaniLocations() []PickupLocation {
	out := make([]PickupLocation, len(pickupMtaaniLocations))
	copy(out, pickupMtaaniLocations)
	return out
}

// KnownLocation reports whether id names a real location for the given
// delivery option. Door-to-door has no locations and always passes.
func KnownLocation(option DeliveryOption, id string) bool {
	var pool []PickupLocation
	switch option {
	case DeliveryStorePickup:
		pool = storeLocations
	case DeliveryPickupMtaani:
		pool = pickupMtaaniLocations
	default:
		return true
	}
	for _, loc := range pool {
		if loc.ID == id {
			return true
		}
	}
	return false
}
