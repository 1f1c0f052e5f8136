package botserver

import (
	"encoding/json"
	"math"
	"testing"
)

type inner struct {
	A float64 `json:"a"`
}

type outer struct {
	inner
	B        float64            `json:"b"`
	Skipped  string             `json:"-"`
	Optional *float64           `json:"optional,omitempty"`
	Plain    int
	List     []float64          `json:"list"`
	Map      map[string]float64 `json:"map"`
	private  int
}

func TestJSONView(t *testing.T) {
	v := outer{
		inner:   inner{A: math.Inf(1)},
		B:       1.5,
		Skipped: "x",
		Plain:   3,
		List:    []float64{math.NaN(), 2},
		Map:     map[string]float64{"k": math.Inf(-1)},
		private: 4,
	}
	data, err := json.Marshal(jsonView(v))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"Plain":3,"a":null,"b":1.5,"list":[null,2],"map":{"k":null}}`
	if string(data) != want {
		t.Fatalf("Got %s, expected %s", data, want)
	}

	one := 1.0
	v.Optional = &one
	data, err = json.Marshal(jsonView(v))
	if err != nil {
		t.Fatal(err)
	}
	want = `{"Plain":3,"a":null,"b":1.5,"list":[null,2],"map":{"k":null},"optional":1}`
	if string(data) != want {
		t.Fatalf("Got %s, expected %s", data, want)
	}
}
