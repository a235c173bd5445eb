package types

// Flexibility describes how freely a device's operating time can be shifted.
type Flexibility string

const (
	FlexibilityLow    Flexibility = "low"
	FlexibilityMedium Flexibility = "medium"
	FlexibilityHigh   Flexibility = "high"
)

// AppliancesSnapshot is the payload of the backend's /api/appliances endpoint.
// Devices is nil when the backend omitted the list, which is different from
// an empty list.
type AppliancesSnapshot struct {
	Devices          []Device `json:"devices"`
	TotalDevices     int      `json:"total_devices,omitempty"`
	TotalConsumption Number   `json:"total_consumption,omitempty"`
}

// Device is a single monitored appliance.
type Device struct {
	DeviceID           string      `json:"device_id"`
	Name               string      `json:"name,omitempty"`
	Location           string      `json:"location,omitempty"`
	CurrentConsumption Number      `json:"current_consumption"`
	AvgConsumption     Number      `json:"avg_consumption"`
	Status             string      `json:"status,omitempty"`
	Flexibility        Flexibility `json:"flexibility,omitempty"`
}

// DisplayName returns the name of the device, falling back to its ID.
func (d Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.DeviceID
}
