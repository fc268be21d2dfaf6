// package module implements the bytecode interpreter that initializes
// and retargets channel register fields (spec §4.4).
package module

import (
	"math/rand"

	"stimbox.dev/regblock"
)

// Program is a short immutable bytecode sequence.
type Program []byte

// VM holds everything a module's opcodes can address: both channel
// blocks and a PRNG for the random MEMOP. It has no scratch byte:
// out-of-range addresses are plain no-ops.
type VM struct {
	A, B *regblock.ChannelBlock
	Rand *rand.Rand
}

// NewVM builds a VM with its own PRNG source, matching the box's single
// foreground thread of control (no concurrent access to Rand).
func NewVM(a, b *regblock.ChannelBlock, seed int64) *VM {
	return &VM{A: a, B: b, Rand: rand.New(rand.NewSource(seed))}
}

// Run executes a module program to completion. Execution is
// single-threaded and synchronous; an unknown opcode advances one byte
// and continues, and there is no error return (spec §4.4).
func (vm *VM) Run(p Program) {
	i := 0
	for i < len(p) {
		op := p[i]
		switch {
		case op&0b1111_0000 == 0b0001_0000:
			// Reserved: 2 bytes consumed, no observable effect.
			i += 2
		case op&0b1110_0000 == 0b0000_0000:
			// END: halt execution of this module.
			return
		case op&0b1110_0000 == 0b0010_0000:
			i += vm.execCopy(p, i)
		case op&0b1111_0000 == 0b0100_0000:
			i += vm.execMemop(p, i)
		case op&0b1111_0000 == 0b0101_0000:
			i += vm.execMathop(p, i)
		case op&0b1000_0000 != 0:
			i += vm.execSet(p, i)
		default:
			// Undefined opcode space (0x60-0x7F): no observable effect,
			// advance one byte and continue (spec §4.4).
			i++
		}
	}
}

func addrOf(hi, lo byte, hiBits uint) uint16 {
	return uint16(hi&((1<<hiBits)-1))<<8 | uint16(lo)
}

func (vm *VM) execCopy(p Program, i int) int {
	if i+1 >= len(p) {
		return len(p) - i
	}
	op := p[i]
	l := (op >> 3) & 0b11
	a := op & 0b111
	addrLow := p[i+1]
	addr := addrOf(a, addrLow, 3)
	n := int(l) + 1
	total := 2 + n
	for j := 0; j < n && i+2+j < len(p); j++ {
		ptr := regblock.RegisterPtr(addr+uint16(j), vm.A, vm.B, nil)
		if ptr != nil {
			*ptr = p[i+2+j]
		}
	}
	return total
}

func (vm *VM) execMemop(p Program, i int) int {
	if i+1 >= len(p) {
		return len(p) - i
	}
	op := p[i]
	oo := (op >> 2) & 0b11
	a := op & 0b11
	addrLow := p[i+1]
	addr := addrOf(a, addrLow, 2)
	ptr := regblock.RegisterPtr(addr, vm.A, vm.B, nil)
	if ptr == nil {
		return 2
	}
	block := vm.blockFor(addr)
	switch oo {
	case 0: // store-to-bank
		if block != nil {
			block.SetBank(*ptr)
		}
	case 1: // load-from-bank
		if block != nil {
			*ptr = block.Bank()
		}
	case 2: // right-shift-by-1
		*ptr >>= 1
	case 3: // random in [random_min, random_max]
		if block != nil {
			*ptr = vm.randomInRange(block.RandomMin(), block.RandomMax())
		}
	}
	return 2
}

func (vm *VM) execMathop(p Program, i int) int {
	if i+2 >= len(p) {
		return len(p) - i
	}
	op := p[i]
	oo := (op >> 2) & 0b11
	a := op & 0b11
	addrLow := p[i+1]
	operand := p[i+2]
	addr := addrOf(a, addrLow, 2)
	ptr := regblock.RegisterPtr(addr, vm.A, vm.B, nil)
	if ptr != nil {
		switch oo {
		case 0:
			*ptr = *ptr + operand
		case 1:
			*ptr = *ptr & operand
		case 2:
			*ptr = *ptr | operand
		case 3:
			*ptr = *ptr ^ operand
		}
	}
	return 3
}

func (vm *VM) execSet(p Program, i int) int {
	if i+1 >= len(p) {
		return len(p) - i
	}
	op := p[i]
	value := p[i+1]
	c := (op >> 6) & 1
	f := op & 0b0011_1111
	if c == 0 {
		vm.setA(f, value)
	} else {
		ptr := regblock.RegisterPtr(regblock.BaseB+uint16(f), vm.A, vm.B, nil)
		if ptr != nil {
			*ptr = value
		}
	}
	return 2
}

// setA writes a base-A offset honoring apply_channel: written into A
// if bit 0 is set, mirrored into B at the same offset if bit 1 is set.
func (vm *VM) setA(offset byte, value byte) {
	mask := vm.A.ApplyChannel()
	if mask&regblock.ApplyA != 0 {
		if ptr := regblock.RegisterPtr(regblock.BaseA+uint16(offset), vm.A, vm.B, nil); ptr != nil {
			*ptr = value
		}
	}
	if mask&regblock.ApplyB != 0 {
		if ptr := regblock.RegisterPtr(regblock.BaseB+uint16(offset), vm.A, vm.B, nil); ptr != nil {
			*ptr = value
		}
	}
}

func (vm *VM) blockFor(addr uint16) *regblock.ChannelBlock {
	switch {
	case addr >= regblock.BaseA && addr < regblock.BaseA+regblock.WindowSize:
		return vm.A
	case addr >= regblock.BaseB && addr < regblock.BaseB+regblock.WindowSize:
		return vm.B
	default:
		return nil
	}
}

func (vm *VM) randomInRange(lo, hi byte) byte {
	if hi < lo {
		lo, hi = hi, lo
	}
	span := int(hi) - int(lo) + 1
	return lo + byte(vm.Rand.Intn(span))
}
