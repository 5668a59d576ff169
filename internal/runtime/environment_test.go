package runtime

import "testing"

func TestEnvironment_LEGBResolution(t *testing.T) {
	global := NewEnvironment()
	global.Define("x", NewInt(1))

	enclosing := NewEnclosedEnvironment(global)
	enclosing.Define("y", NewInt(2))

	local := NewEnclosedEnvironment(enclosing)
	local.Define("z", NewInt(3))

	for name, want := range map[string]int64{"x": 1, "y": 2, "z": 3} {
		v, ok := local.Get(name)
		if !ok {
			t.Fatalf("expected %q to resolve", name)
		}
		if v.(*IntValue).Val.Int64() != want {
			t.Fatalf("%q = %v, want %d", name, v, want)
		}
	}

	if _, ok := local.Get("nope"); ok {
		t.Fatalf("expected unresolved name to fail")
	}
}

func TestEnvironment_SetSearchesOuterScopes(t *testing.T) {
	global := NewEnvironment()
	global.Define("counter", NewInt(0))
	local := NewEnclosedEnvironment(global)

	if err := local.Set("counter", NewInt(5)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := local.GetLocal("counter"); ok {
		t.Fatalf("Set should not shadow into the local scope")
	}
	v, _ := global.Get("counter")
	if v.(*IntValue).Val.Int64() != 5 {
		t.Fatalf("global binding not updated, got %v", v)
	}
}

func TestEnvironment_SetUndefinedNameErrors(t *testing.T) {
	env := NewEnvironment()
	if err := env.Set("ghost", NewInt(1)); err == nil {
		t.Fatalf("expected error assigning to an undefined name")
	}
}

func TestEnvironment_DefineShadowsOuter(t *testing.T) {
	global := NewEnvironment()
	global.Define("x", NewInt(1))
	local := NewEnclosedEnvironment(global)
	local.Define("x", NewInt(2))

	v, _ := local.Get("x")
	if v.(*IntValue).Val.Int64() != 2 {
		t.Fatalf("local shadow not visible, got %v", v)
	}
	v, _ = global.Get("x")
	if v.(*IntValue).Val.Int64() != 1 {
		t.Fatalf("global binding should be unaffected, got %v", v)
	}
}

func TestEnvironment_GlobalDeclaration(t *testing.T) {
	global := NewEnvironment()
	local := NewEnclosedEnvironment(global)
	if local.IsDeclaredGlobal("x") {
		t.Fatalf("should not be declared global yet")
	}
	local.DeclareGlobal("x")
	if !local.IsDeclaredGlobal("x") {
		t.Fatalf("expected 'x' to be declared global")
	}
	if local.Globals() != global {
		t.Fatalf("Globals() should return the module scope")
	}
}

func TestEnvironment_DeleteAndSize(t *testing.T) {
	env := NewEnvironment()
	env.Define("a", NewInt(1))
	env.Define("b", NewInt(2))
	if env.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", env.Size())
	}
	if !env.Delete("a") {
		t.Fatalf("expected Delete to report success")
	}
	if env.Delete("a") {
		t.Fatalf("expected second Delete to report absence")
	}
	if env.Size() != 1 {
		t.Fatalf("Size() after delete = %d, want 1", env.Size())
	}
}
