package pipeline

import (
	"strconv"

	"github.com/ironsheep/dss-annotator/internal/model"
)

// CallCropToKey is the step call recorded in exported sequences.
const CallCropToKey = "crop_to_key"

// Argument is one described argument of a sequence step.
type Argument struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

// SequenceStep is one step of a group's exported sequence.
type SequenceStep struct {
	Call      string     `json:"call"`
	Arguments []Argument `json:"arguments"`
}

// CropSteps returns one crop_to_key step per region of g, in region order.
// The arguments are the region's display x, y, width and height followed by
// the group name as the destination key.
func CropSteps(g *model.Group) []SequenceStep {
	steps := make([]SequenceStep, 0, len(g.Regions))
	for _, r := range g.Regions {
		steps = append(steps, SequenceStep{
			Call: CallCropToKey,
			Arguments: []Argument{
				{Value: strconv.Itoa(r.X), Description: "x"},
				{Value: strconv.Itoa(r.Y), Description: "y"},
				{Value: strconv.Itoa(r.Width()), Description: "width"},
				{Value: strconv.Itoa(r.Height()), Description: "height"},
				{Value: g.Name, Description: "to key"},
			},
		})
	}
	return steps
}
