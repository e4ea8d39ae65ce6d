// Package robot binds the drive and arm actuators of the robot.
package robot

// MotorName identifies the role a motor plays on the robot.
type MotorName string

// Motor roles for the four-wheel-drive robot with a single arm joint.
const (
	LeftFront  MotorName = "leftFront"
	LeftBack   MotorName = "leftBack"
	RightFront MotorName = "rightFront"
	RightBack  MotorName = "rightBack"
	Arm        MotorName = "arm"
)

// AllMotors returns all motor roles in binding order.
func AllMotors() []MotorName {
	return []MotorName{
		LeftFront,
		LeftBack,
		RightFront,
		RightBack,
		Arm,
	}
}

// DriveMotors returns the four wheel roles.
func DriveMotors() []MotorName {
	return []MotorName{LeftFront, LeftBack, RightFront, RightBack}
}

// IsRightSide reports whether the role is mounted on the mirrored (right) side.
func (n MotorName) IsRightSide() bool {
	return n == RightFront || n == RightBack
}
