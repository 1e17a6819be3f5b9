package referenceframe

import (
	"go.viam.com/ikreach/spatialmath"
)

// Arm is an articulated kinematic chain holding a current joint configuration. Implementations are
// not safe for concurrent use; parallel callers should each work on their own Clone.
type Arm interface {
	// Name returns the name of the arm.
	Name() string

	// DoF will return a slice with length equal to the number of joints. Each element describes
	// the limits of that joint.
	DoF() []Limit

	// JointPositions returns a copy of the current configuration.
	JointPositions() []Input

	// SetJointPositions sets the configuration after checking its length and that every bounded
	// joint is within its limits.
	SetJointPositions(inputs []Input) error

	// SetJointPositionsUnchecked sets the configuration after only checking its length. Values
	// outside of the limits are accepted as-is.
	SetJointPositionsUnchecked(inputs []Input) error

	// Transform returns the end effector pose for the given configuration without changing the arm.
	Transform(inputs []Input) (spatialmath.Pose, error)

	// EndPose returns the end effector pose at the current configuration.
	EndPose() (spatialmath.Pose, error)

	// Clone returns an independent deep copy of the arm, including its current configuration.
	Clone() Arm
}
