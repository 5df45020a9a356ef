package mir

import "fmt"

// Verify checks structural well-formedness of f: every block ends with exactly
// one terminator, labels are unique and branches name existing blocks.
func Verify(f *Function) error {
	if f == nil || len(f.Blocks) == 0 {
		return fmt.Errorf("mir: function has no blocks")
	}

	labels := make(map[string]bool, len(f.Blocks))
	for _, bb := range f.Blocks {
		if labels[bb.Name] {
			return fmt.Errorf("mir: %s: duplicate block %s", f.Name, bb.Name)
		}
		labels[bb.Name] = true
	}

	for _, bb := range f.Blocks {
		if bb.Terminator() == nil {
			return fmt.Errorf("mir: %s: block %s has no terminator", f.Name, bb.Name)
		}

		for i, in := range bb.Instr {
			if IsTerminator(in) && i != len(bb.Instr)-1 {
				return fmt.Errorf("mir: %s: block %s has a terminator before its end", f.Name, bb.Name)
			}

			var targets []string
			switch t := in.(type) {
			case Br:
				targets = []string{t.Target}
			case CondBr:
				targets = []string{t.True, t.False}
			}

			for _, target := range targets {
				if !labels[target] {
					return fmt.Errorf("mir: %s: block %s branches to unknown block %s", f.Name, bb.Name, target)
				}
			}
		}
	}

	return nil
}

// VerifyModule verifies every function of m.
func VerifyModule(m *Module) error {
	for _, f := range m.Functions {
		if err := Verify(f); err != nil {
			return err
		}
	}
	return nil
}
