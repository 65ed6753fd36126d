package prog

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encodingVersion is the version of the bytecode file format.
const encodingVersion = 1

// wireProg is the serialized form of a program.
type wireProg struct {
	Version int        `cbor:"1,keyasint"`
	Insts   []wireInst `cbor:"2,keyasint"`
}

type wireInst struct {
	Op   InstOp `cbor:"1,keyasint"`
	Char rune   `cbor:"2,keyasint,omitempty"`
	X    int    `cbor:"3,keyasint,omitempty"`
	Y    int    `cbor:"4,keyasint,omitempty"`
}

// cborEncMode uses the canonical encoding, so equal programs encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("prog: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a program to CBOR bytes.
func Marshal(p *Prog) ([]byte, error) {
	w := wireProg{
		Version: encodingVersion,
		Insts:   make([]wireInst, len(p.Inst)),
	}

	for i, inst := range p.Inst {
		w.Insts[i] = wireInst(inst)
	}

	return cborEncMode.Marshal(&w)
}

// Unmarshal deserializes a program from CBOR bytes and validates it.
func Unmarshal(data []byte) (*Prog, error) {
	var w wireProg
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("prog: unmarshal program: %w", err)
	}

	if w.Version != encodingVersion {
		return nil, fmt.Errorf("prog: unsupported program version %d", w.Version)
	}

	p := &Prog{Inst: make([]Inst, len(w.Insts))}
	for i, inst := range w.Insts {
		p.Inst[i] = Inst(inst)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("prog: unmarshal program: %w", err)
	}

	return p, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Prog) MarshalBinary() ([]byte, error) {
	return Marshal(p)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Prog) UnmarshalBinary(data []byte) error {
	q, err := Unmarshal(data)
	if err != nil {
		return err
	}

	*p = *q
	return nil
}
