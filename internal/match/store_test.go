package match

import "testing"

func TestLoadBytesYAML(t *testing.T) {
	raw := []byte(`
matches:
  - trigger: ":hello"
    replace: "Hello, world"
  - trigger: ":br"
    replace: "Best regards"
    word: true
  - trigger: ":dt"
    replace: "Today is {{date}}"
    vars:
      - name: date
        type: shell
        params:
          cmd: "date"
`)
	store, err := LoadBytes(raw, "matches.yaml")
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("expected 3 matches, got %d", store.Len())
	}
	ms := store.Matches()
	if ms[0].Trigger != ":hello" || ms[0].Template != "Hello, world" {
		t.Errorf("unexpected first match: %+v", ms[0])
	}
	if !ms[1].WordBoundary {
		t.Errorf("expected word boundary on :br")
	}
	if len(ms[2].Vars) != 1 || ms[2].Vars[0].Extension != "shell" {
		t.Errorf("unexpected vars on :dt: %+v", ms[2].Vars)
	}
	if ms[2].Vars[0].Params["cmd"] != "date" {
		t.Errorf("unexpected shell cmd param: %+v", ms[2].Vars[0].Params)
	}
}

func TestLoadBytesJSON(t *testing.T) {
	raw := []byte(`{"matches": [{"trigger": ":sig", "replace": "Sincerely"}]}`)
	store, err := LoadBytes(raw, "matches.json")
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if store.Len() != 1 || store.Matches()[0].Trigger != ":sig" {
		t.Fatalf("unexpected store contents: %+v", store.Matches())
	}
}

func TestLoadBytesRejectsEmptyTrigger(t *testing.T) {
	raw := []byte(`matches: [{replace: "x"}]`)
	if _, err := LoadBytes(raw, "matches.yaml"); err == nil {
		t.Fatal("expected error for empty trigger")
	}
}

func TestLoadBytesImageMatch(t *testing.T) {
	raw := []byte(`matches: [{trigger: ":logo", image_path: "/tmp/logo.png"}]`)
	store, err := LoadBytes(raw, "matches.yaml")
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	m := store.Matches()[0]
	if !m.IsImage() || m.ImagePath != "/tmp/logo.png" {
		t.Errorf("unexpected image match: %+v", m)
	}
}
