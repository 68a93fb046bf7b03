package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRuleCriterionDecodesTaggedLogic(t *testing.T) {
	raw := `[
		{"name":"istj","label":"ISTJ","scoringLogic":{"type":"threshold","dimensions":[{"dimension":"E/I","side":"low"},{"dimension":"S/N","side":"high"}]},"recommendations":["Plan"]},
		{"name":"hi","label":"High S","scoringLogic":{"type":"highest","dimension":"S/N","minScore":20,"maxScore":30}},
		{"name":"top","label":"Top","scoringLogic":{"type":"topN","n":2,"dimensions":["T/F","J/P"]}}
	]`
	var criteria []RuleCriterion
	if err := json.Unmarshal([]byte(raw), &criteria); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	th, ok := criteria[0].Logic.(ThresholdLogic)
	if !ok || len(th.Conditions) != 2 || th.Conditions[0].Side != SideLow {
		t.Fatalf("expected threshold logic, got %#v", criteria[0].Logic)
	}
	if len(criteria[0].Recommendations) != 1 {
		t.Fatalf("expected guidance to decode, got %+v", criteria[0].Guidance)
	}
	if hi, ok := criteria[1].Logic.(HighestLogic); !ok || hi.MinScore != 20 || hi.Dimension != "S/N" {
		t.Fatalf("expected highest logic, got %#v", criteria[1].Logic)
	}
	if top, ok := criteria[2].Logic.(TopNLogic); !ok || top.N != 2 || top.Dimensions[1] != "J/P" {
		t.Fatalf("expected top-n logic, got %#v", criteria[2].Logic)
	}

	encoded, err := json.Marshal(criteria[2])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(encoded), `"type":"topN"`) {
		t.Fatalf("expected type tag in %s", encoded)
	}
}

func TestRuleCriterionRejectsUnknownLogic(t *testing.T) {
	var c RuleCriterion
	err := json.Unmarshal([]byte(`{"name":"x","scoringLogic":{"type":"weighted"}}`), &c)
	if err == nil || !strings.Contains(err.Error(), "weighted") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}
