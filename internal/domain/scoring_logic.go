package domain

import (
	"encoding/json"
	"fmt"
)

// LogicType is the wire tag of a ScoringLogic variant.
type LogicType string

const (
	LogicThreshold LogicType = "threshold"
	LogicHighest   LogicType = "highest"
	LogicTopN      LogicType = "topN"
)

// ScoringLogic decides whether a rule criterion matches a dimension score vector.
// Implemented only by ThresholdLogic, HighestLogic and TopNLogic.
type ScoringLogic interface {
	Type() LogicType
	sealed()
}

// Side is the side of a dimension threshold a condition requires.
type Side string

const (
	SideLow  Side = "low"
	SideHigh Side = "high"
)

// DimensionCondition requires one dimension to be on a side of its threshold.
type DimensionCondition struct {
	Dimension string `json:"dimension"`
	Side      Side   `json:"side"`
}

// ThresholdLogic matches when every condition holds.
type ThresholdLogic struct {
	Conditions []DimensionCondition `json:"dimensions"`
}

// HighestLogic matches when the named dimension scores within [MinScore, MaxScore].
type HighestLogic struct {
	Dimension string `json:"dimension"`
	MinScore  int    `json:"minScore"`
	MaxScore  int    `json:"maxScore"`
}

// TopNLogic matches when the N highest dimensions, by score descending, equal Dimensions in order.
type TopNLogic struct {
	N          int      `json:"n"`
	Dimensions []string `json:"dimensions"`
}

func (ThresholdLogic) Type() LogicType { return LogicThreshold }
func (HighestLogic) Type() LogicType   { return LogicHighest }
func (TopNLogic) Type() LogicType      { return LogicTopN }

func (ThresholdLogic) sealed() {}
func (HighestLogic) sealed()   {}
func (TopNLogic) sealed()      {}

// RuleCriterion is a named classification rule of a complex quiz.
type RuleCriterion struct {
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Color       string       `json:"color,omitempty"`
	Description string       `json:"description,omitempty"`
	Logic       ScoringLogic `json:"-"`
	Guidance
}

type ruleCriterionJSON struct {
	Name        string          `json:"name"`
	Label       string          `json:"label"`
	Color       string          `json:"color,omitempty"`
	Description string          `json:"description,omitempty"`
	Logic       json.RawMessage `json:"scoringLogic"`
	Guidance
}

type logicEnvelope struct {
	Type LogicType `json:"type"`
}

// MarshalJSON writes the scoring logic as a tagged object.
func (c RuleCriterion) MarshalJSON() ([]byte, error) {
	logic, err := marshalLogic(c.Logic)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ruleCriterionJSON{
		Name:        c.Name,
		Label:       c.Label,
		Color:       c.Color,
		Description: c.Description,
		Logic:       logic,
		Guidance:    c.Guidance,
	})
}

// UnmarshalJSON decodes the tagged scoring logic into its concrete variant.
func (c *RuleCriterion) UnmarshalJSON(data []byte) error {
	var raw ruleCriterionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	logic, err := unmarshalLogic(raw.Logic)
	if err != nil {
		return fmt.Errorf("rule criterion %q: %w", raw.Name, err)
	}
	*c = RuleCriterion{
		Name:        raw.Name,
		Label:       raw.Label,
		Color:       raw.Color,
		Description: raw.Description,
		Logic:       logic,
		Guidance:    raw.Guidance,
	}
	return nil
}

func marshalLogic(logic ScoringLogic) (json.RawMessage, error) {
	if logic == nil {
		return json.RawMessage("null"), nil
	}
	switch l := logic.(type) {
	case ThresholdLogic:
		return json.Marshal(struct {
			Type LogicType `json:"type"`
			ThresholdLogic
		}{l.Type(), l})
	case HighestLogic:
		return json.Marshal(struct {
			Type LogicType `json:"type"`
			HighestLogic
		}{l.Type(), l})
	case TopNLogic:
		return json.Marshal(struct {
			Type LogicType `json:"type"`
			TopNLogic
		}{l.Type(), l})
	default:
		return nil, fmt.Errorf("unsupported scoring logic %T", logic)
	}
}

func unmarshalLogic(data json.RawMessage) (ScoringLogic, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env logicEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case LogicThreshold:
		var l ThresholdLogic
		err := json.Unmarshal(data, &l)
		return l, err
	case LogicHighest:
		var l HighestLogic
		err := json.Unmarshal(data, &l)
		return l, err
	case LogicTopN:
		var l TopNLogic
		err := json.Unmarshal(data, &l)
		return l, err
	default:
		return nil, fmt.Errorf("unknown scoring logic type %q", env.Type)
	}
}
