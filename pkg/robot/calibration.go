package robot

// MotorCalibration maps encoder ticks of a servo to its raw bus positions.
type MotorCalibration struct {
	ID           int `json:"id" mapstructure:"id"`
	// HomingOffset is latched from the live position when the encoder is
	// reset at bind time, so it is never read from or written to config.
	HomingOffset int `json:"-" mapstructure:"-"`
	RangeMin     int `json:"range_min" mapstructure:"range_min"`
	RangeMax     int `json:"range_max" mapstructure:"range_max"`
}

// HasRange reports whether a usable range of motion was recorded.
func (c MotorCalibration) HasRange() bool {
	return c.RangeMax > c.RangeMin
}

// Raw converts ticks relative to the homing offset into a raw servo position,
// clamped to the recorded range.
func (c MotorCalibration) Raw(ticks int) int {
	raw := c.HomingOffset + ticks
	if !c.HasRange() {
		return raw
	}
	return min(c.RangeMax, max(c.RangeMin, raw))
}

// Ticks converts a raw servo position to ticks relative to the homing offset.
func (c MotorCalibration) Ticks(raw int) int {
	return raw - c.HomingOffset
}

// Track widens the recorded range to include raw.
func (c *MotorCalibration) Track(raw int) {
	if !c.HasRange() && c.RangeMin == 0 && c.RangeMax == 0 {
		c.RangeMin, c.RangeMax = raw, raw
		return
	}
	c.RangeMin = min(c.RangeMin, raw)
	c.RangeMax = max(c.RangeMax, raw)
}
