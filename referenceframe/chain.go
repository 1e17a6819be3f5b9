package referenceframe

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"go.viam.com/ikreach/spatialmath"
	"go.viam.com/ikreach/utils"
)

// Joint is one revolute joint of a serial chain. Translation is the offset from the previous
// joint's frame (or the chain base) to this joint's origin, expressed in the previous frame.
// Axis is the rotation axis in this joint's own frame.
type Joint struct {
	Name        string
	Translation r3.Vector
	Axis        r3.Vector
	Limit       Limit
}

// SerialChain is an Arm made of revolute joints connected in series, ending in a fixed end
// effector offset.
type SerialChain struct {
	name        string
	joints      []Joint
	endEffector r3.Vector
	limits      []Limit
	inputs      []Input
}

// NewSerialChain creates a chain from its joints, starting at the all-zero configuration. A zero
// configuration that is outside of a joint's limits is replaced by the closest allowed value.
func NewSerialChain(name string, joints []Joint, endEffector r3.Vector) (*SerialChain, error) {
	if len(joints) == 0 {
		return nil, errors.Errorf("chain %q has no joints", name)
	}
	limits := make([]Limit, 0, len(joints))
	inputs := make([]Input, 0, len(joints))
	copied := make([]Joint, 0, len(joints))
	for i, j := range joints {
		if j.Axis.Norm() == 0 {
			return nil, errors.Errorf("joint %d (%s) of chain %q has a zero rotation axis", i, j.Name, name)
		}
		if !j.Limit.Continuous && j.Limit.Min > j.Limit.Max {
			return nil, errors.Errorf("joint %d (%s) of chain %q has min %f greater than max %f",
				i, j.Name, name, j.Limit.Min, j.Limit.Max)
		}
		j.Axis = j.Axis.Normalize()
		copied = append(copied, j)
		limits = append(limits, j.Limit)
		inputs = append(inputs, j.Limit.Clamp(0))
	}
	return &SerialChain{
		name:        name,
		joints:      copied,
		endEffector: endEffector,
		limits:      limits,
		inputs:      inputs,
	}, nil
}

// Name returns the name of the chain.
func (c *SerialChain) Name() string {
	return c.name
}

// DoF returns the joint limits, one per joint.
func (c *SerialChain) DoF() []Limit {
	out := make([]Limit, len(c.limits))
	copy(out, c.limits)
	return out
}

// Joints returns a copy of the joint definitions.
func (c *SerialChain) Joints() []Joint {
	out := make([]Joint, len(c.joints))
	copy(out, c.joints)
	return out
}

// JointPositions returns a copy of the current configuration.
func (c *SerialChain) JointPositions() []Input {
	return CopyInputs(c.inputs)
}

// SetJointPositions sets the configuration, rejecting wrong lengths and bounded joints out of limits.
func (c *SerialChain) SetJointPositions(inputs []Input) error {
	if err := c.validInputs(inputs, true); err != nil {
		return err
	}
	copy(c.inputs, inputs)
	return nil
}

// SetJointPositionsUnchecked sets the configuration, rejecting only wrong lengths.
func (c *SerialChain) SetJointPositionsUnchecked(inputs []Input) error {
	if err := c.validInputs(inputs, false); err != nil {
		return err
	}
	copy(c.inputs, inputs)
	return nil
}

// Transform returns the end effector pose at the given configuration. Limits are not checked so
// that solvers may evaluate any configuration.
func (c *SerialChain) Transform(inputs []Input) (spatialmath.Pose, error) {
	if err := c.validInputs(inputs, false); err != nil {
		return nil, err
	}
	p := spatialmath.NewZeroPose()
	for i, j := range c.joints {
		p = spatialmath.Compose(p, spatialmath.NewPoseFromAxisAngle(j.Translation, j.Axis, inputs[i]))
	}
	return spatialmath.Compose(p, spatialmath.NewPoseFromPoint(c.endEffector)), nil
}

// EndPose returns the end effector pose at the current configuration.
func (c *SerialChain) EndPose() (spatialmath.Pose, error) {
	return c.Transform(c.inputs)
}

// Clone returns a deep copy of the chain.
func (c *SerialChain) Clone() Arm {
	return &SerialChain{
		name:        c.name,
		joints:      c.Joints(),
		endEffector: c.endEffector,
		limits:      c.DoF(),
		inputs:      c.JointPositions(),
	}
}

// String prints out a table of each joint in the chain, with columns of name, translation, axis and limits.
func (c *SerialChain) String() string {
	t := table.NewWriter()
	t.SetTitle(c.name)
	t.AppendHeader(table.Row{"#", "Name", "Translation", "Axis", "Limits"})
	for i, j := range c.joints {
		limits := "continuous"
		if !j.Limit.Continuous {
			limits = fmt.Sprintf("[%.1f, %.1f]", utils.RadToDeg(j.Limit.Min), utils.RadToDeg(j.Limit.Max))
		}
		t.AppendRow([]interface{}{
			fmt.Sprintf("%d", i+1),
			j.Name,
			fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", j.Translation.X, j.Translation.Y, j.Translation.Z),
			fmt.Sprintf("X:%.2f, Y:%.2f, Z:%.2f", j.Axis.X, j.Axis.Y, j.Axis.Z),
			limits,
		})
	}
	t.AppendFooter(table.Row{"", "end effector", fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f",
		c.endEffector.X, c.endEffector.Y, c.endEffector.Z), "", ""})
	return t.Render()
}

func (c *SerialChain) validInputs(inputs []Input, checkLimits bool) error {
	if len(inputs) != len(c.limits) {
		return NewIncorrectDoFError(len(inputs), len(c.limits))
	}
	if !checkLimits {
		return nil
	}
	for i, v := range inputs {
		if !c.limits[i].Contains(v) {
			return NewOutOfBoundsError(i, v, c.limits[i])
		}
	}
	return nil
}
