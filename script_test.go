package modpatch

import "testing"

func TestLoadPatchScript(t *testing.T) {
	src := `
add("sine", "lfo", {frequency = 5, amplitude = 8})
add("saw", "osc", {frequency = 220})
add("gain", "amp", {gain = 0.4})
connect("lfo", 0, "osc", 0)
connect("osc", 0, "amp", 0)
feedback("amp", 0, "amp", 0)
sink("amp")
`
	desc, sink, err := LoadPatchScript(src)
	if err != nil {
		t.Fatal(err)
	}
	if sink != "amp" {
		t.Errorf("sink: got %q, want %q", sink, "amp")
	}
	if len(desc.UGens) != 3 {
		t.Fatalf("ugens: %d", len(desc.UGens))
	}
	if desc.UGens[0].Type != "sine" || desc.UGens[0].Name != "lfo" {
		t.Errorf("first ugen: %+v", desc.UGens[0])
	}
	if got := desc.UGens[0].Params["frequency"]; got != 5 {
		t.Errorf("lfo frequency: %v", got)
	}
	if len(desc.Connections) != 3 {
		t.Fatalf("connections: %d", len(desc.Connections))
	}
	if c := desc.Connections[0]; c.From != "lfo" || c.To != "osc" || c.Feedback {
		t.Errorf("first connection: %+v", c)
	}
	if c := desc.Connections[2]; !c.Feedback {
		t.Errorf("feedback flag lost: %+v", c)
	}
}

func TestLoadPatchScriptRenders(t *testing.T) {
	src := `
add("const", "src", {value = 1})
add("gain", "out", {gain = 0.5})
connect("src", 0, "out", 0)
sink("out")
`
	desc, sink, err := LoadPatchScript(src)
	if err != nil {
		t.Fatal(err)
	}
	samples, err := RenderSamples(desc, sink, 48000, 0.001)
	if err != nil {
		t.Fatal(err)
	}
	if samples[0] != 0.5 {
		t.Errorf("got %v, want 0.5", samples[0])
	}
}

func TestLoadPatchScriptErrors(t *testing.T) {
	if _, _, err := LoadPatchScript(`add("sine")`); err == nil {
		t.Error("missing argument accepted")
	}
	if _, _, err := LoadPatchScript(`this is not lua`); err == nil {
		t.Error("syntax error accepted")
	}
	desc, sink, err := LoadPatchScript(`add("sine", "osc")`)
	if err != nil {
		t.Fatal(err)
	}
	if sink != "" {
		t.Errorf("sink without call: %q", sink)
	}
	if desc.UGens[0].Params != nil {
		t.Errorf("params without table: %v", desc.UGens[0].Params)
	}
}
