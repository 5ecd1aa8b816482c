package modpatch

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/modpatch/modpatch-go/internal/patch"
)

// LoadPatchScript evaluates a Lua patch script and returns the resulting
// description plus the declared sink module name (empty if the script never
// calls sink). Scripts use four globals:
//
//	add(type, name [, params])   -- declare a ugen, params is a table of numbers
//	connect(from, out, to, in)   -- route an output slot into an input slot
//	feedback(from, out, to, in)  -- like connect, designated feedback break
//	sink(name)                   -- module whose output feeds the device
//
// The script only produces a description; validation happens when the
// description is applied to a graph.
func LoadPatchScript(src string) (*patch.Description, string, error) {
	L := lua.NewState()
	defer L.Close()

	desc := &patch.Description{}
	sink := ""

	L.SetGlobal("add", L.NewFunction(func(L *lua.LState) int {
		def := patch.UGenDef{
			Type: L.CheckString(1),
			Name: L.CheckString(2),
		}
		if L.GetTop() >= 3 {
			def.Params = make(map[string]float64)
			L.CheckTable(3).ForEach(func(k, v lua.LValue) {
				key, kok := k.(lua.LString)
				num, vok := v.(lua.LNumber)
				if kok && vok {
					def.Params[string(key)] = float64(num)
				}
			})
		}
		desc.UGens = append(desc.UGens, def)
		return 0
	}))
	addEdge := func(feedback bool) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			desc.Connections = append(desc.Connections, patch.ConnectionDef{
				From:     L.CheckString(1),
				Output:   L.CheckInt(2),
				To:       L.CheckString(3),
				Input:    L.CheckInt(4),
				Feedback: feedback,
			})
			return 0
		})
	}
	L.SetGlobal("connect", addEdge(false))
	L.SetGlobal("feedback", addEdge(true))
	L.SetGlobal("sink", L.NewFunction(func(L *lua.LState) int {
		sink = L.CheckString(1)
		return 0
	}))

	if err := L.DoString(src); err != nil {
		return nil, "", fmt.Errorf("patch script: %w", err)
	}
	return desc, sink, nil
}
