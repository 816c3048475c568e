package render

import (
	"context"
	"strings"

	luaengine "github.com/dshills/expando/internal/render/lua"
	lua "github.com/yuin/gopher-lua"
)

// LuaExtension evaluates params.script against a fresh sandboxed Lua
// state, handing it the positional args as a Lua table and reading back
// the script's "result" global. A new State is opened per call: scripts
// are short and this keeps one match's script from leaking globals into
// the next, at the cost of the interpreter startup (sub-millisecond).
type LuaExtension struct{}

func (LuaExtension) Name() string { return "lua" }

func (LuaExtension) Calculate(_ context.Context, params map[string]any, args []string) (string, bool, error) {
	script, ok := params["script"].(string)
	if !ok || script == "" {
		return "", false, nil
	}

	st, err := luaengine.NewState()
	if err != nil {
		return "", false, err
	}
	defer st.Close()

	bridge := luaengine.NewBridge(st.LuaState())
	st.SetGlobal("args", bridge.ToLuaValue(args))

	if err := st.DoString(script); err != nil {
		return "", false, err
	}

	result := st.GetGlobal("result")
	if result == lua.LNil {
		return "", false, nil
	}
	out := bridge.ToGoValue(result)
	s, ok := out.(string)
	if !ok {
		return "", false, nil
	}
	if trim, _ := params["trim"].(bool); trim {
		s = strings.TrimSpace(s)
	}
	return s, true, nil
}
