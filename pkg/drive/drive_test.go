package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArcadeExample(t *testing.T) {
	left, right := ArcadePower(-0.5, 0.5)
	assert.Equal(t, 1.0, left)
	assert.Equal(t, 0.0, right)
}

func TestArcadeSaturates(t *testing.T) {
	for y := -1.0; y <= 1.0; y += 0.25 {
		for x := -1.0; x <= 1.0; x += 0.25 {
			left, right := ArcadePower(y, x)
			assert.True(t, left >= -1 && left <= 1, "left %v out of range for (%v, %v)", left, y, x)
			assert.True(t, right >= -1 && right <= 1, "right %v out of range for (%v, %v)", right, y, x)
		}
	}

	left, right := ArcadePower(-1, 1)
	assert.Equal(t, 1.0, left)
	assert.Equal(t, 0.0, right)

	left, right = ArcadePower(1, 1)
	assert.Equal(t, 0.0, left)
	assert.Equal(t, -1.0, right)
}

func TestArcadeForwardIsPositive(t *testing.T) {
	left, right := ArcadePower(-0.6, 0)
	assert.Equal(t, 0.6, left)
	assert.Equal(t, 0.6, right)
}

func TestTankPassthrough(t *testing.T) {
	for _, tt := range []struct{ l, r float64 }{
		{0, 0}, {-1, 1}, {0.33, -0.71}, {1, 1},
	} {
		left, right := TankPower(tt.l, tt.r)
		assert.Equal(t, tt.l, left)
		assert.Equal(t, tt.r, right)
	}
}

func TestPowerSelectsMapping(t *testing.T) {
	left, right := Power(Tank, -0.5, 0.9, 0.2)
	assert.Equal(t, -0.5, left)
	assert.Equal(t, 0.2, right)

	left, right = Power(Arcade, -0.5, 0.5, 0.2)
	assert.Equal(t, 1.0, left)
	assert.Equal(t, 0.0, right)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "Tank Drive", Tank.String())
	assert.Equal(t, "Arcade Drive", Arcade.String())
}
