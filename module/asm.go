package module

import "stimbox.dev/regblock"

// Tiny module-authoring helpers: every built-in module (module/builtin.go)
// is assembled from these rather than hand-packed opcode bytes.

func setA(f byte, v byte) []byte { return []byte{0x80 | (f & 0x3F), v} }
func setB(f byte, v byte) []byte { return []byte{0x80 | 0x40 | (f & 0x3F), v} }

func groupField(g regblock.Group, off int) byte { return byte(g.Base() + off) }

// build concatenates ops and appends an END byte.
func build(ops ...[]byte) Program {
	var p Program
	for _, op := range ops {
		p = append(p, op...)
	}
	return append(p, 0x00)
}

// group emits a full eight-field group configuration: value, min, max,
// rate, step, action_min, action_max, select.
func group(g regblock.Group, value, min, max, rate, step, actionMin, actionMax, select_ byte) []byte {
	var ops []byte
	ops = append(ops, setA(groupField(g, regblock.GOffValue), value)...)
	ops = append(ops, setA(groupField(g, regblock.GOffMin), min)...)
	ops = append(ops, setA(groupField(g, regblock.GOffMax), max)...)
	ops = append(ops, setA(groupField(g, regblock.GOffRate), rate)...)
	ops = append(ops, setA(groupField(g, regblock.GOffStep), step)...)
	ops = append(ops, setA(groupField(g, regblock.GOffActionMin), actionMin)...)
	ops = append(ops, setA(groupField(g, regblock.GOffActionMax), actionMax)...)
	ops = append(ops, setA(groupField(g, regblock.GOffSelect), select_)...)
	return ops
}

func knobRange(low, high byte) []byte {
	return append(setA(regblock.OffKnobRangeLow, low), setA(regblock.OffKnobRangeHigh, high)...)
}

func gate(onTime, offTime byte) []byte {
	return append(setA(regblock.OffGateOnTime, onTime), setA(regblock.OffGateOffTime, offTime)...)
}

func nextModule(timerMax, selectByte, number byte) []byte {
	var ops []byte
	ops = append(ops, setA(regblock.OffNextModuleMax, timerMax)...)
	ops = append(ops, setA(regblock.OffNextModuleSelect, selectByte)...)
	ops = append(ops, setA(regblock.OffNextModuleNumber, number)...)
	return ops
}
