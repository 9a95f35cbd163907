package formats

import "testing"

func TestParseBundle(t *testing.T) {
	data := []byte(`
levels:
  - id: a
    speed: 5
    startCoords: {x: 100, y: 100}
    endCoords: {x: 1800, y: 900, rotation: 90}
    walls:
      - {x: 0, y: 300, width: 1500, height: 60}
  - id: b
    speed: 6
`)
	got, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(got))
	}
	if got[0].EndCoords.Rotation != 90 {
		t.Errorf("rotation = %v, expected 90", got[0].EndCoords.Rotation)
	}
	if len(got[0].Walls) != 1 || got[0].Walls[0].Width != 1500 {
		t.Errorf("walls = %+v", got[0].Walls)
	}
}

func TestParseJSONArray(t *testing.T) {
	data := []byte(`[{"walls":[{"x":10,"y":20,"width":30,"height":40}],` +
		`"startCoords":{"x":100,"y":100},` +
		`"endCoords":{"x":500,"y":500,"rotation":180},` +
		`"backgroundImage":"/bg1.png","speed":5}]`)

	got, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 level, got %d", len(got))
	}
	if got[0].BackgroundImage != "/bg1.png" {
		t.Errorf("backgroundImage = %q", got[0].BackgroundImage)
	}
	if got[0].Walls[0].Height != 40 {
		t.Errorf("wall height = %v, expected 40", got[0].Walls[0].Height)
	}
}

func TestParseSingle(t *testing.T) {
	got, err := ParseYAML([]byte("id: solo\nspeed: 3\n"))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "solo" {
		t.Errorf("got %+v", got)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, data := range []string{"", "levels: [", "just a string"} {
		if _, err := ParseYAML([]byte(data)); err == nil {
			t.Errorf("ParseYAML(%q) should fail", data)
		}
	}
}

func TestEncodeRoundTripKeepsOrder(t *testing.T) {
	in := []YAMLLevel{{ID: "x", Speed: 4}, {ID: "y", Speed: 5}}
	data, err := EncodeYAML(in)
	if err != nil {
		t.Fatalf("EncodeYAML failed: %v", err)
	}
	out, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}
	if len(out) != 2 || out[0].ID != "x" || out[1].ID != "y" {
		t.Errorf("order not preserved: %+v", out)
	}
}
