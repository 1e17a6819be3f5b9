package referenceframe

import (
	_ "embed"
	"encoding/json"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/ikreach/utils"
)

// ErrNoModelInformation is used when there is no model information.
var ErrNoModelInformation = errors.New("no model information")

//go:embed sixaxis_kinematics.json
var sixAxisJSON []byte

// ModelConfigJSON represents all supported fields in a kinematics JSON file. Translations are in
// meters and joint limits in degrees.
type ModelConfigJSON struct {
	Name        string            `json:"name"`
	Joints      []JointConfigJSON `json:"joints"`
	EndEffector VectorConfig      `json:"end_effector"`
}

// JointConfigJSON is a revolute joint as it appears in a kinematics JSON file.
type JointConfigJSON struct {
	ID          string       `json:"id"`
	Translation VectorConfig `json:"translation"`
	Axis        VectorConfig `json:"axis"`
	Min         float64      `json:"min"`
	Max         float64      `json:"max"`
	Continuous  bool         `json:"continuous,omitempty"`
}

// VectorConfig is an x/y/z triple.
type VectorConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ToR3 converts the config to an r3.Vector.
func (v VectorConfig) ToR3() r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// ParseModelJSON will parse the given JSON data into a serial chain. modelName sets the name of the
// chain, the name from the JSON is used if it is empty.
func ParseModelJSON(jsonData []byte, modelName string) (*SerialChain, error) {
	// empty data probably means that the arm has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}

	cfg := &ModelConfigJSON{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return cfg.ParseConfig(modelName)
}

// ParseConfig converts the ModelConfigJSON struct into a SerialChain with the name modelName.
func (cfg *ModelConfigJSON) ParseConfig(modelName string) (*SerialChain, error) {
	if modelName == "" {
		modelName = cfg.Name
	}
	joints := make([]Joint, 0, len(cfg.Joints))
	for _, jc := range cfg.Joints {
		limit := Limit{Min: utils.DegToRad(jc.Min), Max: utils.DegToRad(jc.Max)}
		if jc.Continuous {
			limit = ContinuousLimit()
		}
		joints = append(joints, Joint{
			Name:        jc.ID,
			Translation: jc.Translation.ToR3(),
			Axis:        jc.Axis.ToR3(),
			Limit:       limit,
		})
	}
	chain, err := NewSerialChain(modelName, joints, cfg.EndEffector.ToR3())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid model %q", modelName)
	}
	return chain, nil
}

// ParseModelJSONFile will read a given file and then parse the contained JSON data.
func ParseModelJSONFile(filename, modelName string) (*SerialChain, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return ParseModelJSON(jsonData, modelName)
}

// NewSixAxisChain returns the bundled six axis arm model.
func NewSixAxisChain() (*SerialChain, error) {
	return ParseModelJSON(sixAxisJSON, "")
}
