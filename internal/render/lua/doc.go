// Package lua provides the sandboxed Lua runtime backing the "lua" render
// extension, letting a match variable be computed by a short Lua script
// instead of a shell command.
//
// This package wraps the gopher-lua library to provide:
//   - Sandboxed Lua state management
//   - Go-Lua type conversion bridge
//   - Capability-based security
//   - Execution-timeout and instruction-limit settings (stored, but not
//     enforced while a script runs)
//
// # State
//
// The State type manages a Lua runtime with sandboxing:
//
//	state, err := lua.NewState(
//	    lua.WithMemoryLimit(10 * 1024 * 1024),
//	    lua.WithExecutionTimeout(5 * time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer state.Close()
//
//	if err := state.DoFile("script.lua"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Sandbox
//
// The Sandbox restricts Lua code execution by:
//   - Removing dangerous functions (dofile, loadfile, load)
//   - Restricting os module to safe functions only
//   - Keeping an instruction counter (IncrementInstructions); nothing
//     advances it while a script runs, so it does not stop infinite loops
//   - Enforcing capability requirements
//
// # Bridge
//
// The Bridge provides bidirectional type conversion:
//
//	bridge := lua.NewBridge(state.LuaState())
//
//	// Go to Lua
//	luaVal := bridge.ToLuaValue(map[string]interface{}{
//	    "name": "test",
//	    "count": 42,
//	})
//
//	// Lua to Go
//	goVal := bridge.ToGoValue(luaVal)
//
// # Capabilities
//
// A script must be granted capabilities to access restricted functionality:
//
//	state.Sandbox().Grant(lua.CapabilityFileRead)
//	state.Sandbox().Grant(lua.CapabilityNetwork)
//
// Available capabilities:
//   - CapabilityFileRead: installs a read-only io table (open, lines, read)
//   - CapabilityFileWrite: installs an io.open that also accepts write modes
//   - CapabilityNetwork: recorded only; no network API is installed
//   - CapabilityShell: installs an os table with getenv, time and clock;
//     os.execute raises an error
//   - CapabilityClipboard: recorded only; no clipboard API is installed
//   - CapabilityProcess: recorded only; no process API is installed
//   - CapabilityUnsafe: opens the io, os and debug libraries; the removed
//     loader functions and the restricted require stay in place
package lua
