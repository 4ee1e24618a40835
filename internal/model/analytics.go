package model

// TapCount is a device's cumulative logo tap count for a brand.
// Stores keep it as a watermark: a report lower than the stored value is ignored.
type TapCount struct {
	Brand    string
	DeviceID string
	Taps     int
}
