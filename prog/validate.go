package prog

import "fmt"

// Validate checks, that the program is well-formed:
// it is not empty, every jump and split target is a valid address,
// and the only Accept instruction is the last one.
// Programs returned by Compile are always well-formed; Validate is meant for
// programs read from other sources.
func (p *Prog) Validate() error {
	n := len(p.Inst)
	if n == 0 {
		return fmt.Errorf("%w: empty program", ErrMalformed)
	}

	for pc := range p.Inst {
		inst := &p.Inst[pc]

		switch inst.Op {
		case InstChar, InstAny:
			// no targets
		case InstJump:
			if inst.X < 0 || inst.X >= n {
				return fmt.Errorf("%w: %04d: jump target %d out of range", ErrMalformed, pc, inst.X)
			}
		case InstSplit:
			if inst.X < 0 || inst.X >= n || inst.Y < 0 || inst.Y >= n {
				return fmt.Errorf("%w: %04d: split targets %d, %d out of range", ErrMalformed, pc, inst.X, inst.Y)
			}
		case InstAccept:
			if pc != n-1 {
				return fmt.Errorf("%w: %04d: accept before the end of the program", ErrMalformed, pc)
			}
		default:
			return fmt.Errorf("%w: %04d: unknown instruction %s", ErrMalformed, pc, inst.Op)
		}
	}

	if p.Inst[n-1].Op != InstAccept {
		return fmt.Errorf("%w: program does not end with accept", ErrMalformed)
	}

	return nil
}
