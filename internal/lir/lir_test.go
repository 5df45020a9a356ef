package lir

import "testing"

func TestFunctionString(t *testing.T) {
	f := &Function{
		Name:   "sum",
		Params: []string{"%n"},
		Blocks: []*BasicBlock{
			{Label: "entry", Insns: []Insn{
				Alloc{Dst: "%i.addr", Name: "i", Size: 4},
				Store{Addr: "%i.addr", Val: "%n"},
				Arith{Kind: OpAdd, Class: "i32", Dst: "%t0", LHS: "%n", RHS: "1"},
				Call{Callee: "emit", Args: []string{"%t0"}, ArgClasses: []string{"i32"}},
				Ret{Src: "%t0"},
			}},
		},
	}

	want := `func sum(%n) {
entry:
  %i.addr = alloca i, 4
  store %i.addr, %n
  %t0 = add.i32 %n, 1
  call emit(%t0) ; args:i32
  ret %t0
}
`
	if got := f.String(); got != want {
		t.Errorf("Expected\n%s\ngot\n%s", want, got)
	}
}

func TestInstructionStrings(t *testing.T) {
	tests := []struct {
		in   Insn
		want string
	}{
		{Conv{Kind: "sext", Dst: "%t1", Src: "%t0", From: "i8", To: "i64"}, "%t1 = sext %t0 ; i8->i64"},
		{Cmp{Dst: "%t2", Pred: "ule", LHS: "%t1", RHS: "65535"}, "%t2 = cmp.ule %t1, 65535"},
		{BrCond{Cond: "%t2", True: "body", False: "exit"}, "brcond %t2, body, exit"},
		{Call{Dst: "%t3", Callee: "rt.next", Args: []string{"%it"}, RetClass: "i32"}, "%t3 = call rt.next(%it) ; ret:i32"},
		{Ret{}, "ret"},
	}

	for _, tt := range tests {
		if got := tt.in.(interface{ String() string }).String(); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.in.Op(), tt.want, got)
		}
	}
}
