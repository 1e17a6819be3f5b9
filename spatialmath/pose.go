// Package spatialmath defines spatial mathematical operations: poses, orientations and the
// conversions between them.
package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

const defaultPrecision = 1e-8

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The Point() method returns the position in (x,y,z) and the Orientation() method returns
// the rotation.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// NewZeroPose returns a pose at (0,0,0) with no rotation.
func NewZeroPose() Pose {
	return &pose{rotation: quat.Number{Real: 1}}
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a pose with no rotation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return &pose{point: point, rotation: quat.Number{Real: 1}}
}

// NewPose takes in a position and orientation and returns a Pose. A nil orientation means no rotation.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(p)
	}
	return &pose{point: p, rotation: normalizeQuat(o.Quaternion())}
}

// NewPoseFromAxisAngle is a convenience wrapper for a pure rotation of theta radians around axis,
// located at point.
func NewPoseFromAxisAngle(point, axis r3.Vector, theta float64) Pose {
	return NewPose(point, &R4AA{Theta: theta, RX: axis.X, RY: axis.Y, RZ: axis.Z})
}

// Compose treats Poses as functions A(x) and B(x) and produces a new function C(x) = A(B(x)).
// The result is the pose of B's frame expressed in A's parent frame.
func Compose(a, b Pose) Pose {
	aq := a.Orientation().Quaternion()
	return &pose{
		point:    a.Point().Add(RotateVector(aq, b.Point())),
		rotation: normalizeQuat(quat.Mul(aq, b.Orientation().Quaternion())),
	}
}

// PoseInverse will return the inverse of a pose. So if a given pose p is the pose of A relative
// to B, PoseInverse(p) will give the pose of B relative to A.
func PoseInverse(p Pose) Pose {
	inv := quat.Conj(p.Orientation().Quaternion())
	return &pose{
		point:    RotateVector(inv, p.Point()).Mul(-1),
		rotation: normalizeQuat(inv),
	}
}

// PoseBetween returns the difference between two Poses, such that Compose(a, PoseBetween(a, b)) == b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseDelta returns the world frame difference between two poses as six numbers: the
// translation from "from" to "to" followed by the rotation vector (R3 axis angle) of the
// rotation that takes from's orientation onto to's.
func PoseDelta(from, to Pose) []float64 {
	dp := to.Point().Sub(from.Point())
	dr := QuatToR3AA(quat.Mul(to.Orientation().Quaternion(), quat.Conj(from.Orientation().Quaternion())))
	return []float64{dp.X, dp.Y, dp.Z, dr.X, dr.Y, dr.Z}
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, defaultPrecision)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same,
// using epsilon both for the position (per axis) and for the quaternion components.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), epsilon) &&
		OrientationAlmostEqualEps(a.Orientation(), b.Orientation(), epsilon)
}

// PoseAlmostCoincident will return a bool describing whether 2 poses approximately are at the
// same 3D coordinate location, ignoring orientation.
func PoseAlmostCoincident(a, b Pose) bool {
	return PoseAlmostCoincidentEps(a, b, defaultPrecision)
}

// PoseAlmostCoincidentEps is PoseAlmostCoincident with a caller supplied tolerance.
func PoseAlmostCoincidentEps(a, b Pose, epsilon float64) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), epsilon)
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise
// differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	d := a.Sub(b)
	return d.X <= epsilon && d.X >= -epsilon &&
		d.Y <= epsilon && d.Y >= -epsilon &&
		d.Z <= epsilon && d.Z >= -epsilon
}

type pose struct {
	point    r3.Vector
	rotation quat.Number
}

func (p *pose) Point() r3.Vector {
	return p.point
}

func (p *pose) Orientation() Orientation {
	q := quaternion(p.rotation)
	return &q
}

func (p *pose) String() string {
	aa := QuatToR4AA(p.rotation)
	return fmt.Sprintf("{X:%.4f Y:%.4f Z:%.4f Theta:%.4f RX:%.4f RY:%.4f RZ:%.4f}",
		p.point.X, p.point.Y, p.point.Z, aa.Theta, aa.RX, aa.RY, aa.RZ)
}
