package fmi

// UnitDef is a single affine factor/offset pair against a base or display
// unit name (§3 "Unit").
type UnitDef struct {
	Name   string
	Factor float64
	Offset float64
}

// Unit is the full declaration of one FMU-defined unit: its name, a
// base-unit decomposition, and zero or more display units, each carrying
// its own affine factor/offset pair relative to the base unit.
type Unit struct {
	Name         string
	BaseUnits    []UnitDef
	DisplayUnits []UnitDef
}

// displayUnit looks up a display unit by name; ok is false on a miss.
func (u *Unit) displayUnit(name string) (UnitDef, bool) {
	for _, d := range u.DisplayUnits {
		if d.Name == name {
			return d, true
		}
	}
	return UnitDef{}, false
}

// ToDisplay converts a base-unit value into the named display unit.
func (u *Unit) ToDisplay(name string, value float64) (float64, bool) {
	d, ok := u.displayUnit(name)
	if !ok {
		return 0, false
	}
	return value*d.Factor + d.Offset, true
}
