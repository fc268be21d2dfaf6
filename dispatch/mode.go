// package dispatch implements the mode dispatcher: mode index to module
// sequence, split-mode initialization, random-1 rotation, the per-tick
// update protocol, and the deferred command mailbox (spec §4.5).
package dispatch

// Mode identifies one of the box's 25 stimulation modes.
type Mode int

const (
	Waves Mode = iota
	Stroke
	Climb
	Combo
	Intense
	Rhythm
	Audio1
	Audio2
	Audio3
	Random1
	Random2
	Toggle
	Orgasm
	Torment
	Phase1
	Phase2
	Phase3
	User1
	User2
	User3
	User4
	User5
	User6
	User7
	Split

	modeCount
)

func (m Mode) String() string {
	switch m {
	case Waves:
		return "Waves"
	case Stroke:
		return "Stroke"
	case Climb:
		return "Climb"
	case Combo:
		return "Combo"
	case Intense:
		return "Intense"
	case Rhythm:
		return "Rhythm"
	case Audio1:
		return "Audio1"
	case Audio2:
		return "Audio2"
	case Audio3:
		return "Audio3"
	case Random1:
		return "Random1"
	case Random2:
		return "Random2"
	case Toggle:
		return "Toggle"
	case Orgasm:
		return "Orgasm"
	case Torment:
		return "Torment"
	case Phase1:
		return "Phase1"
	case Phase2:
		return "Phase2"
	case Phase3:
		return "Phase3"
	case Split:
		return "Split"
	default:
		if m >= User1 && m <= User7 {
			return "User"
		}
		return "Unknown"
	}
}

// IsUser reports whether m is one of the seven user-programmable modes.
func (m Mode) IsUser() bool { return m >= User1 && m <= User7 }

// UserSlot returns m's 0-based user-module slot index; only valid when
// IsUser reports true.
func (m Mode) UserSlot() int { return int(m - User1) }

// modeEntry describes a built-in mode's fixed module list and any
// output-flag/gate fixups applied after running it (spec §4.5's table).
type modeEntry struct {
	modules     []byte
	gate        byte // 0 means "leave as the modules set it"
	outputFlags byte // 0 means "leave as the modules set it"
}

var modeTable = map[Mode]modeEntry{
	Waves:   {modules: []byte{11, 12}},
	Stroke:  {modules: []byte{3, 4}},
	Climb:   {modules: []byte{5, 8}},
	Combo:   {modules: []byte{13, 33}},
	Intense: {modules: []byte{14, 2}},
	Rhythm:  {modules: []byte{15}},
	Audio1:  {modules: []byte{23}, gate: 0x47, outputFlags: 0x40},
	Audio2:  {modules: []byte{23}, gate: 0x47},
	Audio3:  {modules: []byte{34}, gate: 0x67, outputFlags: 0x04},
	Random2: {modules: []byte{32}},
	Toggle:  {modules: []byte{18}},
	Orgasm:  {modules: []byte{24}},
	Torment: {modules: []byte{28}},
	Phase1:  {modules: []byte{20}, outputFlags: 0x05},
	Phase2:  {modules: []byte{21, 35}, outputFlags: 0x05},
	Phase3:  {modules: []byte{22}},
	// Random1 has no fixed module list: the rotation chooses a sub-mode.
	// Split is handled by its own init protocol, not a module list.
	// UserN run a single stored module via its own path.
}
