package config

import (
	"stimbox.dev/dispatch"
	"stimbox.dev/driver"
)

// checksum is the 8-bit XOR of all bytes before the checksum byte
// (spec §4.7).
func checksum(img *Image) byte {
	var sum byte
	for i := 0; i < offChecksum; i++ {
		sum ^= img[i]
	}
	return sum
}

// Encode serializes c into its persisted wire form, stamping the magic
// byte and recomputing the checksum.
func Encode(c *SystemConfig) Image {
	var img Image
	img[offMagic] = Magic
	img[offMode] = byte(c.Mode)
	img[offPowerLevel] = byte(c.PowerLevel)
	img[offSplitA] = byte(c.SplitA)
	img[offSplitB] = byte(c.SplitB)
	img[offBaseIntA] = c.BaseIntensityA
	img[offBaseIntB] = c.BaseIntensityB
	img[offBaseFreqA] = c.BaseFrequencyA
	img[offBaseFreqB] = c.BaseFrequencyB
	img[offBaseWidthA] = c.BaseWidthA
	img[offBaseWidthB] = c.BaseWidthB
	img[offKnobPos] = c.KnobPosition
	img[offAudioGain] = c.AudioGain
	copy(img[offAdvanced:offAdvanced+8], c.Advanced[:])
	img[offFavourite] = byte(c.Favourite)
	for slot := 0; slot < NumUserSlots; slot++ {
		base := offUserModules + slot*UserSlotSize
		if !c.userValid[slot] {
			continue
		}
		img[base] = slotValidMagic
		copy(img[base+1:base+UserSlotSize], c.userModules[slot][:])
	}
	img[offChecksum] = checksum(&img)
	return img
}

// Decode validates img's magic and checksum and, on success, returns
// the decoded configuration. On failure it reports ok=false and the
// caller should substitute Default() without writing (spec §4.7).
func Decode(img *Image) (cfg SystemConfig, ok bool) {
	if img[offMagic] != Magic {
		return SystemConfig{}, false
	}
	if img[offChecksum] != checksum(img) {
		return SystemConfig{}, false
	}
	cfg.Mode = dispatch.Mode(img[offMode])
	cfg.PowerLevel = PowerLevel(img[offPowerLevel])
	cfg.SplitA = dispatch.Mode(img[offSplitA])
	cfg.SplitB = dispatch.Mode(img[offSplitB])
	cfg.BaseIntensityA = img[offBaseIntA]
	cfg.BaseIntensityB = img[offBaseIntB]
	cfg.BaseFrequencyA = img[offBaseFreqA]
	cfg.BaseFrequencyB = img[offBaseFreqB]
	cfg.BaseWidthA = img[offBaseWidthA]
	cfg.BaseWidthB = img[offBaseWidthB]
	cfg.KnobPosition = img[offKnobPos]
	cfg.AudioGain = img[offAudioGain]
	copy(cfg.Advanced[:], img[offAdvanced:offAdvanced+8])
	cfg.Favourite = dispatch.Mode(img[offFavourite])
	for slot := 0; slot < NumUserSlots; slot++ {
		base := offUserModules + slot*UserSlotSize
		if img[base] != slotValidMagic {
			continue
		}
		cfg.userValid[slot] = true
		copy(cfg.userModules[slot][:], img[base+1:base+UserSlotSize])
	}
	return cfg, true
}

// Load reads the configuration block from store and decodes it. On any
// integrity failure it returns factory defaults, matching the box's
// behaviour of substituting defaults without writing back (spec §4.7).
func Load(store driver.Store) (SystemConfig, error) {
	var img Image
	if _, err := store.ReadAt(img[:], 0); err != nil {
		return Default(), err
	}
	if cfg, ok := Decode(&img); ok {
		return cfg, nil
	}
	return Default(), nil
}

// Save always writes the magic byte and a freshly computed checksum.
func Save(store driver.Store, c *SystemConfig) error {
	img := Encode(c)
	_, err := store.WriteAt(img[:], 0)
	return err
}
